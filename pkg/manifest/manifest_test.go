// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"strings"
	"testing"

	"github.com/sofloc/sofloc/internal/testutil/solutiontest"
)

func TestParseSolution(t *testing.T) {
	t.Parallel()

	fx := solutiontest.Default()
	sol, err := ParseSolution(fx.SolutionXML())
	if err != nil {
		t.Fatalf("ParseSolution() error = %v", err)
	}

	if sol.UniqueName != "TestSolution" {
		t.Errorf("UniqueName = %q, want %q", sol.UniqueName, "TestSolution")
	}
	if sol.Version == nil || *sol.Version != solutiontest.Version {
		t.Errorf("Version = %v, want %q", sol.Version, solutiontest.Version)
	}
	if len(sol.RootComponents) != 2 {
		t.Fatalf("len(RootComponents) = %d, want 2", len(sol.RootComponents))
	}
	if sol.RootComponents[0].Type != ComponentTypeWorkflow {
		t.Errorf("RootComponents[0].Type = %d, want %d", sol.RootComponents[0].Type, ComponentTypeWorkflow)
	}
	if !sol.HasWorkflow(strings.ToUpper(solutiontest.FirstFlowID)) {
		t.Error("HasWorkflow() must match GUIDs regardless of case and braces")
	}
	if sol.HasWorkflow("00000000-0000-0000-0000-000000000000") {
		t.Error("HasWorkflow() = true for an unknown id")
	}
}

func TestParseSolution_MissingVersion(t *testing.T) {
	t.Parallel()

	fx := solutiontest.Default()
	fx.SolutionEdit = func(s string) string {
		return strings.Replace(s, "<Version>2.0.0.0</Version>", "", 1)
	}
	sol, err := ParseSolution(fx.SolutionXML())
	if err != nil {
		t.Fatalf("ParseSolution() error = %v", err)
	}
	if sol.Version != nil {
		t.Errorf("Version = %q, want nil", *sol.Version)
	}
}

func TestParseSolution_ByteOrderMark(t *testing.T) {
	t.Parallel()

	sol, err := ParseSolution("\ufeff" + solutiontest.Default().SolutionXML())
	if err != nil {
		t.Fatalf("ParseSolution() error = %v", err)
	}
	if sol.Version == nil {
		t.Error("Version = nil, want a value")
	}
}

func TestParseCustomizations(t *testing.T) {
	t.Parallel()

	fx := solutiontest.Default()
	fx.Newline = "\r\n"
	cust, err := ParseCustomizations(fx.CustomizationsXML())
	if err != nil {
		t.Fatalf("ParseCustomizations() error = %v", err)
	}

	if len(cust.Workflows) != 2 {
		t.Fatalf("len(Workflows) = %d, want 2", len(cust.Workflows))
	}
	first := cust.Workflows[0]
	if NormalizeGUID(first.WorkflowID) != solutiontest.FirstFlowID {
		t.Errorf("WorkflowID = %q", first.WorkflowID)
	}
	if first.Name != solutiontest.FirstFlowName {
		t.Errorf("Name = %q, want %q", first.Name, solutiontest.FirstFlowName)
	}
	if want := "/" + fx.Flows[0].FileName(); first.JSONFileName != want {
		t.Errorf("JSONFileName = %q, want %q", first.JSONFileName, want)
	}
	if first.IntroducedVersion != "1.0.0.0" {
		t.Errorf("IntroducedVersion = %q", first.IntroducedVersion)
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseSolution("<ImportExportXml><SolutionManifest>")
	var malformed *MalformedError
	if !errors.As(err, &malformed) || !errors.Is(err, ErrMalformed) {
		t.Fatalf("ParseSolution() error = %v, want *MalformedError", err)
	}
	if malformed.Manifest != SolutionFile {
		t.Errorf("Manifest = %q, want %q", malformed.Manifest, SolutionFile)
	}

	if _, err := ParseCustomizations("not xml at all <"); !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseCustomizations() error = %v, want ErrMalformed", err)
	}
}

func TestNormalizeGUID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "{0F48CBA9-EF0C-ED11-82E4-000D3A64F6F2}", want: solutiontest.FirstFlowID},
		{in: "  0f48cba9-ef0c-ed11-82e4-000d3a64f6f2 ", want: solutiontest.FirstFlowID},
		{in: "{ abc }", want: "abc"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeGUID(tt.in); got != tt.want {
				t.Errorf("NormalizeGUID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := BracedGUID("ABC"); got != "{abc}" {
		t.Errorf("BracedGUID() = %q, want %q", got, "{abc}")
	}
}
