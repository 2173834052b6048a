package vcs

import (
	"context"
	"os"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/execproc"
	"github.com/alexisbeaulieu97/uplift/internal/model"
	filediff "github.com/alexisbeaulieu97/uplift/pkg/diff"
)

// Differ computes a structured diff outcome for an ordered pair of files.
type Differ interface {
	Diff(ctx context.Context, rel, leftPath, rightPath string) (model.DiffOutcome, error)
}

var _ Differ = (*Git)(nil)

// Diff compares leftPath against rightPath and classifies the result.
// Missing files map to AddedOnly/DeletedOnly, ignored paths to
// IgnoredByVcs, and a failing diff subprocess degrades to an in-process
// unified diff rather than aborting the run.
func (g *Git) Diff(ctx context.Context, rel, leftPath, rightPath string) (model.DiffOutcome, error) {
	leftExists := g.exists(leftPath)
	rightExists := g.exists(rightPath)

	switch {
	case !leftExists && !rightExists:
		return model.DiffOutcome{Kind: model.DiffEqual}, nil
	case !leftExists:
		return model.DiffOutcome{Kind: model.DiffAddedOnly}, nil
	case !rightExists:
		return model.DiffOutcome{Kind: model.DiffDeletedOnly}, nil
	}

	if g.IsIgnored(rel) {
		return model.DiffOutcome{Kind: model.DiffIgnored}, nil
	}

	res, err := g.runner.Run(ctx, execproc.Command{
		Name: "git",
		Args: []string{"diff", "--no-index", "--no-color", "--", leftPath, rightPath},
	})
	if err != nil {
		if ctx.Err() != nil {
			return model.DiffOutcome{}, err
		}
		return g.fallbackDiff(rel, leftPath, rightPath)
	}

	switch {
	case res.ExitCode == 0:
		return model.DiffOutcome{Kind: model.DiffEqual}, nil
	case res.ExitCode == 1:
		return model.DiffOutcome{Kind: model.DiffChanged, Patch: res.Stdout}, nil
	default:
		g.log.WithFields(map[string]any{"path": rel, "exit_code": res.ExitCode}).
			Warn("git diff failed, falling back to in-process diff")
		return g.fallbackDiff(rel, leftPath, rightPath)
	}
}

func (g *Git) fallbackDiff(rel, leftPath, rightPath string) (model.DiffOutcome, error) {
	left, err := afero.ReadFile(g.fs, leftPath)
	if err != nil {
		return model.DiffOutcome{}, err
	}
	right, err := afero.ReadFile(g.fs, rightPath)
	if err != nil {
		return model.DiffOutcome{}, err
	}

	patch := filediff.Unified(left, right, "a/"+rel, "b/"+rel)
	if patch == "" {
		return model.DiffOutcome{Kind: model.DiffEqual}, nil
	}
	return model.DiffOutcome{Kind: model.DiffChanged, Patch: patch}, nil
}

func (g *Git) exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := g.fs.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
