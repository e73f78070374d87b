// SPDX-License-Identifier: MPL-2.0

package solution

import (
	"regexp"
	"strings"

	"github.com/sofloc/sofloc/pkg/archive"
	"github.com/sofloc/sofloc/pkg/manifest"
)

var workflowFilePattern = regexp.MustCompile(`^Workflows/.+\.json$`)

// workflowRecord is an indexed flow together with its definition entry.
type workflowRecord struct {
	ID   string
	Name string
	File string
}

// buildIndex lists the customizations workflows that are also workflow root
// components and have a definition entry named after their upper-case GUID.
func buildIndex(sol *manifest.Solution, cust *manifest.Customizations, a *archive.Archive) []workflowRecord {
	files := a.Match(workflowFilePattern)

	records := make([]workflowRecord, 0, len(cust.Workflows))
	for _, wf := range cust.Workflows {
		id := manifest.NormalizeGUID(wf.WorkflowID)
		if id == "" || !sol.HasWorkflow(id) {
			continue
		}
		file, ok := definitionFile(files, id)
		if !ok {
			continue
		}
		records = append(records, workflowRecord{ID: id, Name: wf.Name, File: file})
	}
	return records
}

func definitionFile(files []string, id string) (string, bool) {
	upper := strings.ToUpper(id)
	for _, f := range files {
		if strings.Contains(f, upper) {
			return f, true
		}
	}
	return "", false
}

// reindex re-derives the flow index from the current manifest texts.
func (s *Solution) reindex() error {
	sol, cust, err := parseManifests(s.solutionXML, s.customizationsXML)
	if err != nil {
		return err
	}
	s.workflows = buildIndex(sol, cust, s.archive)
	return nil
}
