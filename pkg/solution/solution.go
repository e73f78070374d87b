// SPDX-License-Identifier: MPL-2.0

package solution

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"

	"github.com/sofloc/sofloc/pkg/archive"
	"github.com/sofloc/sofloc/pkg/manifest"
)

type (
	// Solution is an exported solution archive loaded for editing.
	Solution struct {
		open func() (*archive.Archive, error)
		opts options

		loaded bool
		name   string

		archive           *archive.Archive
		solutionXML       string
		customizationsXML string
		version           string
		originalVersion   string
		workflows         []workflowRecord
		data              []byte
	}

	// WorkflowSummary identifies a flow of the solution.
	WorkflowSummary struct {
		// ID is the normalized (lower case, unbraced) GUID.
		ID string
		// Name is the display name from customizations.xml.
		Name string
	}

	// Manifests holds the raw manifest texts of a loaded solution.
	Manifests struct {
		Solution       string
		Customizations string
	}
)

// New creates an unloaded Solution over raw archive bytes.
// name is the declared archive file name, e.g. "MySolution_1_0_0_0.zip".
func New(data []byte, name string, opts ...Option) *Solution {
	data = bytes.Clone(data)
	return newSolution(func() (*archive.Archive, error) { return archive.Open(data) }, name, opts)
}

// NewBase64 creates an unloaded Solution over a base64 encoded archive.
func NewBase64(encoded, name string, opts ...Option) *Solution {
	return newSolution(func() (*archive.Archive, error) { return archive.OpenBase64(encoded) }, name, opts)
}

func newSolution(open func() (*archive.Archive, error), name string, opts []Option) *Solution {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Solution{open: open, opts: o, name: name}
}

// Load unpacks the archive, reads both manifests, and builds the flow index.
// It is a no-op once the Solution is loaded. On failure nothing is retained.
func (s *Solution) Load() error {
	if s.loaded {
		return nil
	}

	a, err := s.open()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveUnreadable, err)
	}
	if err := a.SetCompressionLevel(s.opts.compressionLevel); err != nil {
		return err
	}

	customizationsXML, err := readManifest(a, manifest.CustomizationsFile)
	if err != nil {
		return err
	}
	solutionXML, err := readManifest(a, manifest.SolutionFile)
	if err != nil {
		return err
	}

	sol, cust, err := parseManifests(solutionXML, customizationsXML)
	if err != nil {
		return err
	}
	if sol.Version == nil || *sol.Version == "" {
		return ErrVersionUnreadable
	}

	workflows := buildIndex(sol, cust, a)
	data, err := a.Pack()
	if err != nil {
		return err
	}

	s.archive = a
	s.solutionXML = solutionXML
	s.customizationsXML = customizationsXML
	s.version = *sol.Version
	s.originalVersion = *sol.Version
	s.workflows = workflows
	s.data = data
	s.loaded = true

	s.opts.logger.Debug("Loaded solution",
		"name", s.name, "version", s.version, "workflows", len(workflows), "bytes", len(data))
	return nil
}

// Loaded reports whether Load has succeeded.
func (s *Solution) Loaded() bool {
	return s.loaded
}

// Name returns the declared archive name. UpdateVersion rewrites its version token.
func (s *Solution) Name() string {
	return s.name
}

// Version returns the current version, or "" before Load.
func (s *Solution) Version() string {
	return s.version
}

// OriginalVersion returns the version read at load time, or "" before Load.
func (s *Solution) OriginalVersion() string {
	return s.originalVersion
}

// Workflows returns the indexed flows in customizations.xml order.
// The list is empty before Load.
func (s *Solution) Workflows() []WorkflowSummary {
	summaries := make([]WorkflowSummary, 0, len(s.workflows))
	if !s.loaded {
		return summaries
	}
	for _, wf := range s.workflows {
		summaries = append(summaries, WorkflowSummary{ID: wf.ID, Name: wf.Name})
	}
	return summaries
}

// Bytes returns the packed archive, or nil before Load.
func (s *Solution) Bytes() []byte {
	return bytes.Clone(s.data)
}

// Data returns the packed archive encoded as standard base64, or "" before Load.
func (s *Solution) Data() string {
	if !s.loaded {
		return ""
	}
	return base64.StdEncoding.EncodeToString(s.data)
}

// Manifests returns the current manifest texts.
func (s *Solution) Manifests() Manifests {
	return Manifests{Solution: s.solutionXML, Customizations: s.customizationsXML}
}

// readManifest reads a required manifest entry as text.
func readManifest(a *archive.Archive, name string) (string, error) {
	text, err := a.ReadString(name)
	if errors.Is(err, archive.ErrEntryNotFound) {
		return "", &ManifestMissingError{Name: name}
	}
	return text, err
}

func parseManifests(solutionXML, customizationsXML string) (*manifest.Solution, *manifest.Customizations, error) {
	sol, err := manifest.ParseSolution(solutionXML)
	if err != nil {
		return nil, nil, &ManifestMalformedError{Name: manifest.SolutionFile, Err: err}
	}
	cust, err := manifest.ParseCustomizations(customizationsXML)
	if err != nil {
		return nil, nil, &ManifestMalformedError{Name: manifest.CustomizationsFile, Err: err}
	}
	return sol, cust, nil
}

// lookup resolves a caller supplied id (any case, braces optional).
func (s *Solution) lookup(id string) (workflowRecord, error) {
	want := manifest.NormalizeGUID(id)
	i := slices.IndexFunc(s.workflows, func(wf workflowRecord) bool { return wf.ID == want })
	if want == "" || i < 0 {
		return workflowRecord{}, &WorkflowNotFoundError{ID: id}
	}
	return s.workflows[i], nil
}
