// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "copy flow"},
			want: "failed to copy flow",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "read archive", Resource: "./Solution.zip"},
			want: "failed to read archive: ./Solution.zip",
		},
		{
			name: "with resource and cause",
			err: &ActionableError{
				Operation: "write archive",
				Resource:  "out.zip",
				Cause:     errors.New("permission denied"),
			},
			want: "failed to write archive: out.zip: permission denied",
		},
		{
			name: "cause without resource",
			err:  &ActionableError{Operation: "load config", Cause: errors.New("bad field")},
			want: "failed to load config: bad field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := WrapWithContext(fmt.Errorf("layer: %w", sentinel), "copy flow", "Solution.zip")

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() should find the wrapped sentinel")
	}
	var ae *ActionableError
	if !errors.As(fmt.Errorf("outer: %w", err), &ae) {
		t.Fatal("errors.As() should find the ActionableError")
	}
	if ae.Resource != "Solution.zip" {
		t.Errorf("Resource = %q", ae.Resource)
	}
}

func TestWrapWithContext_Nil(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("zip: not a valid zip file")
	err := NewErrorContext().
		WithOperation("read solution archive").
		WithResource("broken.zip").
		WithSuggestion("Export the solution again").
		WithSuggestions("Pass --base64 for encoded input").
		Wrap(fmt.Errorf("failed to unzip the file: %w", inner)).
		Build()

	plain := err.Format(false)
	if !strings.HasPrefix(plain, "failed to read solution archive: broken.zip") {
		t.Errorf("Format(false) = %q", plain)
	}
	if !strings.Contains(plain, "\n  • Export the solution again") || !strings.Contains(plain, "\n  • Pass --base64") {
		t.Errorf("Format(false) misses suggestions: %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Errorf("Format(false) must not include the error chain: %q", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Fatalf("Format(true) = %q, want an error chain", verbose)
	}
	if !strings.Contains(verbose, "1. failed to unzip the file") || !strings.Contains(verbose, "2. zip: not a valid zip file") {
		t.Errorf("Format(true) chain = %q", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return a nil interface")
	}

	ae := NewErrorContext().WithOperation("delete flow").Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.HasSuggestions() {
		t.Error("HasSuggestions() = true, want false")
	}

	err := NewErrorContext().WithOperation("delete flow").WithSuggestion("list flows").BuildError()
	if err == nil || !err.(*ActionableError).HasSuggestions() {
		t.Errorf("BuildError() = %v, want an error with suggestions", err)
	}
}
