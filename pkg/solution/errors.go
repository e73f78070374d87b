// SPDX-License-Identifier: MPL-2.0

package solution

import (
	"errors"
	"fmt"
)

var (
	// ErrArchiveUnreadable is returned when the input bytes are not a readable zip archive.
	ErrArchiveUnreadable = errors.New("failed to unzip the file")
	// ErrManifestMissing is returned when solution.xml or customizations.xml is absent.
	ErrManifestMissing = errors.New("manifest missing")
	// ErrManifestMalformed is returned when a manifest is present but is not valid XML.
	ErrManifestMalformed = errors.New("manifest malformed")
	// ErrVersionUnreadable is returned when the version element cannot be located.
	ErrVersionUnreadable = errors.New("failed to retrieve the version")
	// ErrInvalidVersionFormat is returned for versions other than dot-separated integers.
	ErrInvalidVersionFormat = errors.New("invalid version format")
	// ErrVersionNotAdvancing is returned when a new version is not greater than the original one.
	ErrVersionNotAdvancing = errors.New("version not advancing")
	// ErrWorkflowNotFound is returned when a flow id does not resolve to an indexed flow.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrFragmentNotFound is returned when an indexed flow has no matching manifest fragment.
	ErrFragmentNotFound = errors.New("manifest fragment not found")
	// ErrInvalidFlowName is returned when a copy name is empty or blank.
	ErrInvalidFlowName = errors.New("invalid flow name")
	// ErrGUIDCollision is returned when the GUID source keeps returning ids already in use.
	ErrGUIDCollision = errors.New("generated GUID collides with an existing flow")
)

type (
	// ManifestMissingError is returned when a required manifest entry is absent.
	ManifestMissingError struct {
		Name string
	}

	// ManifestMalformedError is returned when a manifest cannot be parsed.
	ManifestMalformedError struct {
		Name string
		Err  error
	}

	// InvalidVersionFormatError is returned when a version string is rejected by format.
	InvalidVersionFormatError struct {
		Version string
		Err     error
	}

	// VersionNotAdvancingError is returned when a version is not greater than the baseline.
	VersionNotAdvancingError struct {
		Version  string
		Baseline string
	}

	// WorkflowNotFoundError is returned when a flow id is not in the index.
	WorkflowNotFoundError struct {
		ID string
	}

	// FragmentNotFoundError signals that the manifests were edited out of step
	// with the flow index. It matches both ErrFragmentNotFound and
	// ErrWorkflowNotFound.
	FragmentNotFoundError struct {
		ID       string
		Manifest string
	}
)

// Error implements the error interface.
func (e *ManifestMissingError) Error() string {
	return fmt.Sprintf("'%s' was not found in the Solution zip", e.Name)
}

// Unwrap returns ErrManifestMissing for errors.Is() compatibility.
func (e *ManifestMissingError) Unwrap() error { return ErrManifestMissing }

// Error implements the error interface.
func (e *ManifestMalformedError) Error() string {
	return fmt.Sprintf("'%s' could not be parsed: %v", e.Name, e.Err)
}

// Unwrap returns ErrManifestMalformed and the parser error.
func (e *ManifestMalformedError) Unwrap() []error { return []error{ErrManifestMalformed, e.Err} }

// Error implements the error interface.
func (e *InvalidVersionFormatError) Error() string {
	return fmt.Sprintf("Version '%s' is not valid. It should follow the format <major>.<minor>.<build>.<revision>.", e.Version)
}

// Unwrap returns ErrInvalidVersionFormat and the validation error.
func (e *InvalidVersionFormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidVersionFormat}
	}
	return []error{ErrInvalidVersionFormat, e.Err}
}

// Error implements the error interface.
func (e *VersionNotAdvancingError) Error() string {
	return fmt.Sprintf("Version '%s' is not greater than '%s'", e.Version, e.Baseline)
}

// Unwrap returns ErrVersionNotAdvancing for errors.Is() compatibility.
func (e *VersionNotAdvancingError) Unwrap() error { return ErrVersionNotAdvancing }

// Error implements the error interface.
func (e *WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("Workflow file with GUID '%s' does not exist in this Solution or the Solution was changed without updating 'solution.xml' or 'customizations.xml'", e.ID)
}

// Unwrap returns ErrWorkflowNotFound for errors.Is() compatibility.
func (e *WorkflowNotFoundError) Unwrap() error { return ErrWorkflowNotFound }

// Error implements the error interface.
func (e *FragmentNotFoundError) Error() string {
	return fmt.Sprintf("The GUID '%s' was not found in '%s'", e.ID, e.Manifest)
}

// Unwrap returns ErrFragmentNotFound for errors.Is() compatibility.
func (e *FragmentNotFoundError) Unwrap() error { return ErrFragmentNotFound }

// Is reports a referential-integrity failure as a missing workflow too.
func (e *FragmentNotFoundError) Is(target error) bool {
	return target == ErrWorkflowNotFound
}
