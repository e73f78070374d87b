// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/sofloc/sofloc/internal/issue"
	"github.com/sofloc/sofloc/internal/storage"
	"github.com/sofloc/sofloc/pkg/solution"
)

type failureClass struct {
	issueID     issue.Id
	exitCode    int
	suggestions []string
}

// classifyError maps a domain or storage error to its catalog issue, exit
// code and inline suggestions. issueID is zero when no catalog entry applies.
func classifyError(err error) failureClass {
	switch {
	case errors.Is(err, solution.ErrArchiveUnreadable):
		return failureClass{issue.ArchiveUnreadableId, ExitRejected, []string{"Pass the exported .zip file, or use --base64 for encoded input"}}
	case errors.Is(err, solution.ErrManifestMissing),
		errors.Is(err, solution.ErrManifestMalformed),
		errors.Is(err, solution.ErrVersionUnreadable):
		return failureClass{issue.ManifestMissingId, ExitRejected, []string{"Export the solution again instead of editing the archive by hand"}}
	case errors.Is(err, solution.ErrInvalidVersionFormat),
		errors.Is(err, solution.ErrVersionNotAdvancing):
		return failureClass{issue.VersionRejectedId, ExitRejected, []string{"Use 'sofloc version show' to see the current version"}}
	case errors.Is(err, solution.ErrWorkflowNotFound):
		return failureClass{issue.WorkflowNotFoundId, ExitRejected, []string{"Use 'sofloc flows list' to see the flow ids"}}
	case errors.Is(err, solution.ErrInvalidFlowName):
		return failureClass{0, ExitRejected, []string{"Pass a non-empty --name"}}
	case errors.Is(err, storage.ErrExists):
		return failureClass{issue.OutputWriteFailedId, ExitFailure, []string{"Pass --force to replace the file, or choose another --out"}}
	case errors.Is(err, storage.ErrNotFound):
		return failureClass{0, ExitFailure, []string{"Check the archive path"}}
	default:
		return failureClass{0, ExitFailure, nil}
	}
}

// fail turns err into the ExitError returned from RunE. The catalog guidance
// for the failure, if any, is rendered to stderr first.
func (a *App) fail(operation, resource string, err error) error {
	class := classifyError(err)

	ae := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestions(class.suggestions...).
		Wrap(err).
		Build()

	if class.issueID != 0 {
		if rendered, renderErr := issue.Get(class.issueID).Render(a.glamourStyle()); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}
	if a.verbose {
		fmt.Fprintln(a.stderr, ae.Format(true))
	}
	a.logger.Debug("command failed", "operation", operation, "resource", resource, "error", err)

	return &ExitError{Code: class.exitCode, Err: ae}
}
