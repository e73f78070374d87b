// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

const (
	// SolutionFile is the archive path of the package manifest.
	SolutionFile = "solution.xml"
	// CustomizationsFile is the archive path of the customizations manifest.
	CustomizationsFile = "customizations.xml"

	// ComponentTypeWorkflow is the root component type code for workflows.
	ComponentTypeWorkflow = 29
)

// ErrMalformed is returned when a manifest text is not well-formed XML.
var ErrMalformed = errors.New("malformed manifest")

type (
	// Solution is the parsed package manifest.
	Solution struct {
		// UniqueName is the solution unique name.
		UniqueName string
		// Version is the declared solution version; nil when the element is absent.
		Version *string
		// RootComponents lists the top-level component references.
		RootComponents []RootComponent
	}

	// RootComponent is one <RootComponent> reference of the package manifest.
	RootComponent struct {
		Type     int    `xml:"type,attr"`
		ID       string `xml:"id,attr"`
		Behavior string `xml:"behavior,attr"`
	}

	// Customizations is the parsed customizations manifest.
	Customizations struct {
		// Workflows lists the workflow elements in document order.
		Workflows []Workflow
	}

	// Workflow is one <Workflow> element of the customizations manifest.
	Workflow struct {
		WorkflowID        string `xml:"WorkflowId,attr"`
		Name              string `xml:"Name,attr"`
		JSONFileName      string `xml:"JsonFileName"`
		IntroducedVersion string `xml:"IntroducedVersion"`
	}

	// MalformedError is returned when a manifest cannot be parsed.
	// It wraps ErrMalformed for errors.Is() compatibility.
	MalformedError struct {
		Manifest string
		Err      error
	}

	solutionDocument struct {
		XMLName  xml.Name `xml:"ImportExportXml"`
		Manifest struct {
			UniqueName     string          `xml:"UniqueName"`
			Version        *string         `xml:"Version"`
			RootComponents []RootComponent `xml:"RootComponents>RootComponent"`
		} `xml:"SolutionManifest"`
	}

	customizationsDocument struct {
		XMLName   xml.Name   `xml:"ImportExportXml"`
		Workflows []Workflow `xml:"Workflows>Workflow"`
	}
)

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("'%s' is not a valid manifest: %v", e.Manifest, e.Err)
}

// Unwrap returns ErrMalformed for errors.Is() compatibility.
func (e *MalformedError) Unwrap() error { return ErrMalformed }

// ParseSolution parses the package manifest text.
func ParseSolution(text string) (*Solution, error) {
	var doc solutionDocument
	if err := decode(text, &doc); err != nil {
		return nil, &MalformedError{Manifest: SolutionFile, Err: err}
	}

	sol := &Solution{
		UniqueName:     strings.TrimSpace(doc.Manifest.UniqueName),
		RootComponents: doc.Manifest.RootComponents,
	}
	if doc.Manifest.Version != nil {
		v := strings.TrimSpace(*doc.Manifest.Version)
		sol.Version = &v
	}
	return sol, nil
}

// ParseCustomizations parses the customizations manifest text.
func ParseCustomizations(text string) (*Customizations, error) {
	var doc customizationsDocument
	if err := decode(text, &doc); err != nil {
		return nil, &MalformedError{Manifest: CustomizationsFile, Err: err}
	}

	workflows := make([]Workflow, 0, len(doc.Workflows))
	for _, wf := range doc.Workflows {
		wf.JSONFileName = strings.TrimSpace(wf.JSONFileName)
		wf.IntroducedVersion = strings.TrimSpace(wf.IntroducedVersion)
		workflows = append(workflows, wf)
	}
	return &Customizations{Workflows: workflows}, nil
}

// HasWorkflow reports whether a workflow root component references id.
// The comparison is made on normalized GUIDs.
func (s *Solution) HasWorkflow(id string) bool {
	want := NormalizeGUID(id)
	for _, rc := range s.RootComponents {
		if rc.Type == ComponentTypeWorkflow && NormalizeGUID(rc.ID) == want {
			return true
		}
	}
	return false
}

// decode strips a leading byte order mark before handing the text to encoding/xml.
func decode(text string, v any) error {
	return xml.Unmarshal([]byte(strings.TrimPrefix(text, "\ufeff")), v)
}
