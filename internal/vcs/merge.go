package vcs

import (
	"context"
	"os"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/execproc"
	"github.com/alexisbeaulieu97/uplift/internal/model"
)

// Merger performs two-way and three-way file merges.
type Merger interface {
	MergeThreeWay(ctx context.Context, rel, basePath, currentPath, targetPath string) (model.MergeOutcome, error)
	MergeTwoWay(ctx context.Context, rel, currentPath, targetPath string) (model.MergeOutcome, error)
}

var _ Merger = (*Git)(nil)

// MergeThreeWay merges current and target using base as the common
// ancestor. Conflicting hunks are embedded with diff3-style markers and
// reported through HasConflict.
func (g *Git) MergeThreeWay(ctx context.Context, rel, basePath, currentPath, targetPath string) (model.MergeOutcome, error) {
	return g.mergeFile(ctx, rel, basePath, currentPath, targetPath, true)
}

// MergeTwoWay merges current and target without a common ancestor. git
// merge-file is given an empty ancestor, so every overlapping change
// surfaces as a conflict the user must resolve.
func (g *Git) MergeTwoWay(ctx context.Context, rel, currentPath, targetPath string) (model.MergeOutcome, error) {
	empty, err := afero.TempFile(g.fs, "", "uplift-empty-base-")
	if err != nil {
		return model.MergeOutcome{}, err
	}
	emptyPath := empty.Name()
	empty.Close()
	defer g.fs.Remove(emptyPath)

	return g.mergeFile(ctx, rel, emptyPath, currentPath, targetPath, false)
}

func (g *Git) mergeFile(ctx context.Context, rel, basePath, currentPath, targetPath string, diff3 bool) (model.MergeOutcome, error) {
	currentBytes, err := g.readOrEmpty(currentPath)
	if err != nil {
		return model.MergeOutcome{}, err
	}
	targetBytes, err := g.readOrEmpty(targetPath)
	if err != nil {
		return model.MergeOutcome{}, err
	}

	// Binary content cannot be text-merged; the merge degrades to taking
	// the target wholesale.
	if !utf8.Valid(currentBytes) || !utf8.Valid(targetBytes) {
		return model.MergeOutcome{
			LocalPath: rel,
			Body:      model.RawBody(targetBytes),
		}, nil
	}

	// merge-file refuses paths it cannot open, so a missing side is
	// materialized as an empty scratch file before the subprocess runs.
	for _, input := range []*string{&currentPath, &basePath, &targetPath} {
		ensured, cleanup, ensureErr := g.ensureOnDisk(*input)
		if ensureErr != nil {
			return model.MergeOutcome{}, ensureErr
		}
		defer cleanup()
		*input = ensured
	}

	args := []string{"merge-file", "-p"}
	if diff3 {
		args = append(args, "--diff3")
	}
	args = append(args,
		"-L", "current",
		"-L", "base",
		"-L", "target",
		currentPath, basePath, targetPath,
	)

	res, err := g.runner.Run(ctx, execproc.Command{Name: "git", Args: args})
	if err != nil {
		if ctx.Err() != nil {
			return model.MergeOutcome{}, err
		}
		g.log.WithFields(map[string]any{"path": rel}).
			Warn("git merge-file unavailable, taking target")
		return model.MergeOutcome{LocalPath: rel, Body: model.BodyFor(targetBytes)}, nil
	}

	// merge-file exits with the number of conflicts, or a code >=128 when
	// the merge itself failed.
	switch {
	case res.ExitCode == 0:
		return model.MergeOutcome{LocalPath: rel, Body: model.TextBody(res.Stdout)}, nil
	case res.ExitCode > 0 && res.ExitCode < 128:
		return model.MergeOutcome{LocalPath: rel, Body: model.TextBody(res.Stdout), HasConflict: true}, nil
	default:
		g.log.WithFields(map[string]any{"path": rel, "exit_code": res.ExitCode}).
			Warn("git merge-file failed, taking target")
		return model.MergeOutcome{LocalPath: rel, Body: model.BodyFor(targetBytes)}, nil
	}
}

func (g *Git) ensureOnDisk(path string) (string, func(), error) {
	if g.exists(path) {
		return path, func() {}, nil
	}
	f, err := afero.TempFile(g.fs, "", "uplift-empty-input-")
	if err != nil {
		return "", nil, err
	}
	name := f.Name()
	f.Close()
	return name, func() { g.fs.Remove(name) }, nil
}

func (g *Git) readOrEmpty(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(g.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
