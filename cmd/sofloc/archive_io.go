// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sofloc/sofloc/internal/manifestdiff"
	"github.com/sofloc/sofloc/internal/storage"
	"github.com/sofloc/sofloc/pkg/manifest"
	"github.com/sofloc/sofloc/pkg/solution"
)

// base64Suffix is stripped from encoded archive names to recover the declared
// zip name, and appended to default output locations of encoded archives.
const base64Suffix = ".b64"

type (
	// sourceFlags select how the archive argument is read.
	sourceFlags struct {
		base64 bool
	}

	// outputFlags control where and whether a rewritten archive is written.
	outputFlags struct {
		out    string
		force  bool
		dryRun bool
		diff   bool
	}
)

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.base64, "base64", false, "the archive file holds base64 text instead of zip bytes")
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "destination path or URL (default <output_dir>/<solution name>)")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "replace the destination if it exists")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "apply the change in memory without writing")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "print the manifest changes")
}

// openSolution reads and loads the archive at location.
func (a *App) openSolution(ctx context.Context, location string, src sourceFlags) (*solution.Solution, error) {
	data, err := a.Archives.Read(ctx, location)
	if err != nil {
		return nil, a.fail("read solution archive", location, err)
	}

	name := storage.BaseName(location)
	var sol *solution.Solution
	if src.base64 {
		sol = solution.NewBase64(string(data), strings.TrimSuffix(name, base64Suffix), a.solutionOptions()...)
	} else {
		sol = solution.New(data, name, a.solutionOptions()...)
	}

	if err := sol.Load(); err != nil {
		return nil, a.fail("load solution archive", location, err)
	}
	return sol, nil
}

// destination resolves the output location of a rewritten archive.
func (a *App) destination(sol *solution.Solution, out outputFlags, src sourceFlags) string {
	if out.out != "" {
		return out.out
	}
	name := sol.Name()
	if src.base64 {
		name += base64Suffix
	}
	return storage.Join(a.cfg.OutputDir, name)
}

// writeSolution prints the requested diff and writes the packed archive.
func (a *App) writeSolution(ctx context.Context, sol *solution.Solution, before solution.Manifests, out outputFlags, src sourceFlags) error {
	if out.diff {
		a.printDiffs(a.stdout, before, sol.Manifests())
	}

	dest := a.destination(sol, out, src)
	if out.dryRun {
		fmt.Fprintf(a.stdout, "%s would write %s (dry run)\n", SubtitleStyle.Render("•"), CmdStyle.Render(dest))
		return nil
	}

	data := sol.Bytes()
	if src.base64 {
		data = []byte(sol.Data())
	}
	if err := a.Archives.Write(ctx, dest, data, out.force || a.cfg.Overwrite); err != nil {
		return a.fail("write solution archive", dest, err)
	}

	a.logger.Debug("archive written", "location", dest, "bytes", len(data))
	fmt.Fprintf(a.stdout, "%s Wrote %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(dest))
	return nil
}

// printDiffs writes a colored unified diff of both manifests to w.
func (a *App) printDiffs(w io.Writer, before, after solution.Manifests) {
	diffs := []manifestdiff.Diff{
		manifestdiff.Compute(manifest.SolutionFile, before.Solution, after.Solution, a.cfg.Diff.MaxLines),
		manifestdiff.Compute(manifest.CustomizationsFile, before.Customizations, after.Customizations, a.cfg.Diff.MaxLines),
	}

	for _, d := range diffs {
		if d.Truncated {
			fmt.Fprintf(w, "%s diff of %s skipped (more than %d lines)\n", WarningStyle.Render("!"), d.Name, a.cfg.Diff.MaxLines)
			continue
		}
		if !d.Changed() {
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Unified(a.cfg.Diff.Context), "\n"), "\n") {
			fmt.Fprintln(w, styleDiffLine(line))
		}
	}
}

func styleDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return TitleStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return diffHunkStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return diffAddedStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return diffRemovedStyle.Render(line)
	default:
		return VerboseStyle.Render(line)
	}
}
