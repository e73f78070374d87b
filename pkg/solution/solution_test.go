// SPDX-License-Identifier: MPL-2.0

package solution

import (
	"encoding/base64"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/sofloc/sofloc/internal/testutil/solutiontest"
	"github.com/sofloc/sofloc/pkg/archive"
	"github.com/sofloc/sofloc/pkg/manifest"
)

var testGUIDs = []string{
	"aaaaaaaa-1111-4111-8111-000000000001",
	"bbbbbbbb-2222-4222-8222-000000000002",
	"cccccccc-3333-4333-8333-000000000003",
}

// sequence returns a GUID source that yields ids in order.
func sequence(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func newDefault(t *testing.T, opts ...Option) *Solution {
	t.Helper()
	opts = append([]Option{WithGUIDSource(sequence(testGUIDs...))}, opts...)
	return New(solutiontest.DefaultBytes(t), solutiontest.ArchiveName, opts...)
}

func names(summaries []WorkflowSummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.Name)
	}
	return out
}

func TestSolution_BeforeLoad(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	if s.Loaded() {
		t.Error("Loaded() = true before Load")
	}
	if wf := s.Workflows(); wf == nil || len(wf) != 0 {
		t.Errorf("Workflows() = %v, want empty non-nil list", wf)
	}
	if s.Version() != "" || s.Data() != "" {
		t.Error("Version() and Data() must be empty before Load")
	}
	if s.Name() != solutiontest.ArchiveName {
		t.Errorf("Name() = %q, want %q", s.Name(), solutiontest.ArchiveName)
	}
}

func TestSolution_Load(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if s.Version() != solutiontest.Version || s.OriginalVersion() != solutiontest.Version {
		t.Errorf("Version() = %q, OriginalVersion() = %q", s.Version(), s.OriginalVersion())
	}
	want := []WorkflowSummary{
		{ID: solutiontest.FirstFlowID, Name: solutiontest.FirstFlowName},
		{ID: solutiontest.SecondFlowID, Name: solutiontest.SecondFlowName},
	}
	if got := s.Workflows(); !slices.Equal(got, want) {
		t.Errorf("Workflows() = %v, want %v", got, want)
	}
	if _, err := base64.StdEncoding.DecodeString(s.Data()); err != nil {
		t.Errorf("Data() is not base64: %v", err)
	}
}

func TestNewBase64(t *testing.T) {
	t.Parallel()

	encoded := base64.StdEncoding.EncodeToString(solutiontest.DefaultBytes(t))
	s := NewBase64(encoded, solutiontest.ArchiveName)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(s.Workflows()) != 2 {
		t.Errorf("len(Workflows()) = %d, want 2", len(s.Workflows()))
	}
}

func TestSolution_LoadFailures(t *testing.T) {
	t.Parallel()

	withFixture := func(edit func(*solutiontest.Fixture)) func(*testing.T) []byte {
		return func(t *testing.T) []byte {
			fx := solutiontest.Default()
			edit(&fx)
			return fx.Bytes(t)
		}
	}

	tests := []struct {
		name    string
		data    func(*testing.T) []byte
		wantErr error
	}{
		{
			name:    "not a zip",
			data:    func(*testing.T) []byte { return []byte("plain text") },
			wantErr: ErrArchiveUnreadable,
		},
		{
			name:    "missing solution.xml",
			data:    withFixture(func(fx *solutiontest.Fixture) { fx.Omit = []string{manifest.SolutionFile} }),
			wantErr: ErrManifestMissing,
		},
		{
			name:    "missing customizations.xml",
			data:    withFixture(func(fx *solutiontest.Fixture) { fx.Omit = []string{manifest.CustomizationsFile} }),
			wantErr: ErrManifestMissing,
		},
		{
			name: "missing version element",
			data: withFixture(func(fx *solutiontest.Fixture) {
				fx.SolutionEdit = func(s string) string { return strings.Replace(s, "<Version>2.0.0.0</Version>", "", 1) }
			}),
			wantErr: ErrVersionUnreadable,
		},
		{
			name: "malformed customizations",
			data: withFixture(func(fx *solutiontest.Fixture) {
				fx.CustomizationsEdit = func(s string) string { return strings.TrimSuffix(s, "</ImportExportXml>") }
			}),
			wantErr: ErrManifestMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := New(tt.data(t), solutiontest.ArchiveName)
			if err := s.Load(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if s.Loaded() || len(s.Workflows()) != 0 {
				t.Error("failed Load must leave the solution unloaded")
			}
			if err := s.CopyFlow(solutiontest.FirstFlowID, "Copy", ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("CopyFlow() error = %v, want the load error %v", err, tt.wantErr)
			}
		})
	}
}

func TestSolution_ManifestMissingName(t *testing.T) {
	t.Parallel()

	fx := solutiontest.Default()
	fx.Omit = []string{manifest.CustomizationsFile}
	err := New(fx.Bytes(t), solutiontest.ArchiveName).Load()

	var missing *ManifestMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Load() error = %v, want *ManifestMissingError", err)
	}
	if missing.Name != manifest.CustomizationsFile {
		t.Errorf("Name = %q, want %q", missing.Name, manifest.CustomizationsFile)
	}
}

func TestSolution_IndexRequiresAllThreeSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(*solutiontest.Fixture)
	}{
		{
			name: "no definition entry",
			edit: func(fx *solutiontest.Fixture) { fx.Omit = []string{fx.Flows[1].FileName()} },
		},
		{
			name: "no root component",
			edit: func(fx *solutiontest.Fixture) {
				fx.SolutionEdit = func(s string) string {
					return strings.Replace(s, `<RootComponent type="29" id="{`+solutiontest.SecondFlowID+`}" behavior="0" />`, "", 1)
				}
			},
		},
		{
			name: "root component of another type",
			edit: func(fx *solutiontest.Fixture) {
				fx.SolutionEdit = func(s string) string {
					return strings.Replace(s, `type="29" id="{`+solutiontest.SecondFlowID, `type="1" id="{`+solutiontest.SecondFlowID, 1)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := solutiontest.Default()
			tt.edit(&fx)
			s := New(fx.Bytes(t), solutiontest.ArchiveName)
			if err := s.Load(); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			got := s.Workflows()
			if len(got) != 1 || got[0].ID != solutiontest.FirstFlowID {
				t.Errorf("Workflows() = %v, want only the first flow", got)
			}
		})
	}
}

func TestSolution_Scenario(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	if err := s.UpdateVersion("2.1.0.0"); err != nil {
		t.Fatalf("UpdateVersion() error = %v", err)
	}
	if err := s.CopyFlow(solutiontest.SecondFlowID, "First Copy", ""); err != nil {
		t.Fatalf("CopyFlow(F2) error = %v", err)
	}
	if err := s.CopyFlow(solutiontest.FirstFlowID, "Second Copy", ""); err != nil {
		t.Fatalf("CopyFlow(F1) error = %v", err)
	}
	if err := s.CopyFlow(strings.ToUpper("{"+solutiontest.FirstFlowID+"}"), "Third Copy", ""); err != nil {
		t.Fatalf("CopyFlow(F1) error = %v", err)
	}

	wantNames := []string{solutiontest.FirstFlowName, "Third Copy", "Second Copy", solutiontest.SecondFlowName, "First Copy"}
	if got := names(s.Workflows()); !slices.Equal(got, wantNames) {
		t.Errorf("Workflows() names = %v, want %v", got, wantNames)
	}
	if s.Name() != "TestSolution_2_1_0_0.zip" {
		t.Errorf("Name() = %q, want %q", s.Name(), "TestSolution_2_1_0_0.zip")
	}
	if s.Version() != "2.1.0.0" || s.OriginalVersion() != solutiontest.Version {
		t.Errorf("Version() = %q, OriginalVersion() = %q", s.Version(), s.OriginalVersion())
	}

	packed, err := archive.Open(s.Bytes())
	if err != nil {
		t.Fatalf("packed output unreadable: %v", err)
	}
	for i, file := range []string{"FirstCopy", "SecondCopy", "ThirdCopy"} {
		name := "Workflows/" + file + "-" + strings.ToUpper(testGUIDs[i]) + ".json"
		if !packed.Has(name) {
			t.Errorf("packed archive has no entry %s", name)
		}
	}

	cust := s.Manifests().Customizations
	if !strings.Contains(cust, "<JsonFileName>/Workflows/FirstCopy-"+strings.ToUpper(testGUIDs[0])+".json</JsonFileName>") {
		t.Error("copy JsonFileName not rewritten")
	}
	if strings.Count(cust, "<IntroducedVersion>2.1.0.0</IntroducedVersion>") != 3 {
		t.Error("every copy must carry the current version as IntroducedVersion")
	}
}

func TestSolution_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	if err := s.CopyFlow(solutiontest.FirstFlowID, "Copy", "3.0"); err != nil {
		t.Fatalf("CopyFlow() error = %v", err)
	}
	if err := s.DeleteFlow(solutiontest.SecondFlowID); err != nil {
		t.Fatalf("DeleteFlow() error = %v", err)
	}

	reloaded := NewBase64(s.Data(), s.Name())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reloading packed output: %v", err)
	}
	if !slices.Equal(reloaded.Workflows(), s.Workflows()) {
		t.Errorf("reloaded Workflows() = %v, want %v", reloaded.Workflows(), s.Workflows())
	}
	if reloaded.Version() != "3.0" {
		t.Errorf("reloaded Version() = %q, want %q", reloaded.Version(), "3.0")
	}
	if s.Name() != "TestSolution_3_0.zip" {
		t.Errorf("Name() = %q, want %q", s.Name(), "TestSolution_3_0.zip")
	}
}

func TestSolution_CopyPreservesFormatting(t *testing.T) {
	t.Parallel()

	fx := solutiontest.Default()
	fx.Newline = "\r\n"
	s := New(fx.Bytes(t), solutiontest.ArchiveName, WithGUIDSource(sequence(testGUIDs[0])))
	if err := s.CopyFlow(solutiontest.SecondFlowID, "Copy", ""); err != nil {
		t.Fatalf("CopyFlow() error = %v", err)
	}

	sol := s.Manifests().Solution
	want := "\r\n      <RootComponent type=\"29\" id=\"{" + solutiontest.SecondFlowID + "}\" behavior=\"0\" />" +
		"\r\n      <RootComponent type=\"29\" id=\"{" + testGUIDs[0] + "}\" behavior=\"0\" />\r\n    </RootComponents>"
	if !strings.Contains(sol, want) {
		t.Errorf("solution.xml copy not inserted after its source with the same indentation:\n%s", sol)
	}

	original := fx.SolutionXML()
	if strings.Replace(sol, "\r\n      <RootComponent type=\"29\" id=\"{"+testGUIDs[0]+"}\" behavior=\"0\" />", "", 1) != original {
		t.Error("text outside the inserted fragment changed")
	}
}

func TestSolution_CopyEscapesDisplayName(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	if err := s.CopyFlow(solutiontest.FirstFlowID, `R&D "Flow"`, ""); err != nil {
		t.Fatalf("CopyFlow() error = %v", err)
	}
	got := s.Workflows()
	if got[1].Name != `R&D "Flow"` {
		t.Errorf("copy name = %q, want %q", got[1].Name, `R&D "Flow"`)
	}
	if !strings.Contains(s.Manifests().Customizations, `Name="R&amp;D &quot;Flow&quot;"`) {
		t.Error("display name not escaped in customizations.xml")
	}
}

func TestSolution_NotFound(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	const unknown = "00000000-0000-0000-0000-000000000000"

	err := s.CopyFlow(unknown, "Copy", "")
	var notFound *WorkflowNotFoundError
	if !errors.As(err, &notFound) || notFound.ID != unknown {
		t.Errorf("CopyFlow() error = %v, want *WorkflowNotFoundError", err)
	}
	if err := s.DeleteFlow(unknown); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("DeleteFlow() error = %v, want ErrWorkflowNotFound", err)
	}
	if err := s.CopyFlow("", "Copy", ""); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("CopyFlow(\"\") error = %v, want ErrWorkflowNotFound", err)
	}
	if len(s.Workflows()) != 2 {
		t.Error("failed operations must not change the flow list")
	}
}

func TestSolution_InvalidFlowName(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	if err := s.CopyFlow(solutiontest.FirstFlowID, " \t", ""); !errors.Is(err, ErrInvalidFlowName) {
		t.Errorf("CopyFlow() error = %v, want ErrInvalidFlowName", err)
	}
}

func TestSolution_DeleteThenCopy(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	if err := s.DeleteFlow(solutiontest.FirstFlowID); err != nil {
		t.Fatalf("DeleteFlow() error = %v", err)
	}
	if got := names(s.Workflows()); !slices.Equal(got, []string{solutiontest.SecondFlowName}) {
		t.Fatalf("Workflows() after delete = %v", got)
	}

	packed, err := archive.Open(s.Bytes())
	if err != nil {
		t.Fatalf("packed output unreadable: %v", err)
	}
	if packed.Has(solutiontest.Default().Flows[0].FileName()) {
		t.Error("definition entry of the deleted flow is still packed")
	}
	for _, text := range []string{s.Manifests().Solution, s.Manifests().Customizations} {
		if strings.Contains(text, solutiontest.FirstFlowID) {
			t.Error("deleted flow is still referenced by a manifest")
		}
	}

	if err := s.CopyFlow(solutiontest.FirstFlowID, "Copy", ""); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("CopyFlow(deleted) error = %v, want ErrWorkflowNotFound", err)
	}
	if err := s.CopyFlow(solutiontest.SecondFlowID, "Copy", ""); err != nil {
		t.Fatalf("CopyFlow() error = %v", err)
	}
	if got := names(s.Workflows()); !slices.Equal(got, []string{solutiontest.SecondFlowName, "Copy"}) {
		t.Errorf("Workflows() = %v", got)
	}
}

func TestSolution_UpdateVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		steps   []string
		wantErr error
		want    string
	}{
		{name: "minor bump", steps: []string{"2.1.0.0"}, want: "2.1.0.0"},
		{name: "shorter form", steps: []string{"2.1"}, want: "2.1"},
		{name: "lower than original", steps: []string{"1.99.99.99"}, wantErr: ErrVersionNotAdvancing, want: "2.0.0.0"},
		{name: "equal to original", steps: []string{"2.0.0.0"}, wantErr: ErrVersionNotAdvancing, want: "2.0.0.0"},
		{name: "equal with other padding", steps: []string{"2.0"}, wantErr: ErrVersionNotAdvancing, want: "2.0.0.0"},
		{name: "trailing dot", steps: []string{"1.7."}, wantErr: ErrInvalidVersionFormat, want: "2.0.0.0"},
		{name: "baseline is the original", steps: []string{"2.3", "2.1.0.0"}, want: "2.1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newDefault(t)
			var err error
			for _, v := range tt.steps {
				if err = s.UpdateVersion(v); err != nil {
					break
				}
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("UpdateVersion() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateVersion() error = %v, want %v", err, tt.wantErr)
			}
			if s.Version() != tt.want {
				t.Errorf("Version() = %q, want %q", s.Version(), tt.want)
			}
			if !strings.Contains(s.Manifests().Solution, "<Version>"+tt.want+"</Version>") {
				t.Errorf("solution.xml does not declare version %s", tt.want)
			}
		})
	}
}

func TestSolution_CopyWithRejectedVersion(t *testing.T) {
	t.Parallel()

	s := newDefault(t)
	err := s.CopyFlow(solutiontest.FirstFlowID, "Copy", "1.0")
	if !errors.Is(err, ErrVersionNotAdvancing) {
		t.Fatalf("CopyFlow() error = %v, want ErrVersionNotAdvancing", err)
	}
	var notAdvancing *VersionNotAdvancingError
	if errors.As(err, &notAdvancing) && notAdvancing.Baseline != solutiontest.Version {
		t.Errorf("Baseline = %q, want %q", notAdvancing.Baseline, solutiontest.Version)
	}
	if len(s.Workflows()) != 2 || s.Version() != solutiontest.Version {
		t.Error("rejected copy must leave the solution unchanged")
	}
}

func TestSolution_FragmentNotFoundRestoresState(t *testing.T) {
	t.Parallel()

	// The root component uses an attribute order the patch anchor does not
	// accept, so the second manifest patch fails after the first succeeded.
	fx := solutiontest.Default()
	fx.SolutionEdit = func(s string) string {
		return strings.Replace(s,
			`<RootComponent type="29" id="{`+solutiontest.FirstFlowID+`}" behavior="0" />`,
			`<RootComponent id="{`+solutiontest.FirstFlowID+`}" type="29" behavior="0" />`, 1)
	}
	s := New(fx.Bytes(t), solutiontest.ArchiveName)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := s.Manifests()

	err := s.CopyFlow(solutiontest.FirstFlowID, "Copy", "2.5")
	var fragment *FragmentNotFoundError
	if !errors.As(err, &fragment) {
		t.Fatalf("CopyFlow() error = %v, want *FragmentNotFoundError", err)
	}
	if fragment.Manifest != manifest.SolutionFile {
		t.Errorf("Manifest = %q, want %q", fragment.Manifest, manifest.SolutionFile)
	}
	if !errors.Is(err, ErrWorkflowNotFound) || !errors.Is(err, ErrFragmentNotFound) {
		t.Error("FragmentNotFoundError must match ErrWorkflowNotFound and ErrFragmentNotFound")
	}
	if s.Manifests() != before || s.Version() != solutiontest.Version || s.Name() != solutiontest.ArchiveName {
		t.Error("failed copy must restore manifests, version and name")
	}
}

func TestSolution_GUIDCollision(t *testing.T) {
	t.Parallel()

	s := New(solutiontest.DefaultBytes(t), solutiontest.ArchiveName,
		WithGUIDSource(sequence(strings.ToUpper(solutiontest.FirstFlowID))))
	if err := s.CopyFlow(solutiontest.SecondFlowID, "Copy", ""); !errors.Is(err, ErrGUIDCollision) {
		t.Errorf("CopyFlow() error = %v, want ErrGUIDCollision", err)
	}
}

func TestSolution_CompressionLevel(t *testing.T) {
	t.Parallel()

	s := New(solutiontest.DefaultBytes(t), solutiontest.ArchiveName, WithCompressionLevel(0))
	if err := s.Load(); !errors.Is(err, archive.ErrInvalidCompressionLevel) {
		t.Errorf("Load() error = %v, want ErrInvalidCompressionLevel", err)
	}

	s = New(solutiontest.DefaultBytes(t), solutiontest.ArchiveName, WithCompressionLevel(1))
	if err := s.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}
