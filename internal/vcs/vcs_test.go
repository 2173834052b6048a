package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/uplift/internal/execproc"
	"github.com/alexisbeaulieu97/uplift/internal/model"
)

func newMemGit(t *testing.T, responses ...execproc.FakeResponse) (*Git, afero.Fs, *execproc.FakeRunner) {
	t.Helper()
	fs := afero.NewMemMapFs()
	runner := &execproc.FakeRunner{Responses: responses}
	return New(fs, runner, nil), fs, runner
}

func TestDiffClassifiesMissingSides(t *testing.T) {
	t.Parallel()

	g, fs, _ := newMemGit(t)
	require.NoError(t, afero.WriteFile(fs, "/right/file.txt", []byte("x"), 0o644))

	out, err := g.Diff(context.Background(), "file.txt", "/left/file.txt", "/right/file.txt")
	require.NoError(t, err)
	assert.Equal(t, model.DiffAddedOnly, out.Kind)

	out, err = g.Diff(context.Background(), "file.txt", "/right/file.txt", "/left/file.txt")
	require.NoError(t, err)
	assert.Equal(t, model.DiffDeletedOnly, out.Kind)

	out, err = g.Diff(context.Background(), "file.txt", "/none/a", "/none/b")
	require.NoError(t, err)
	assert.Equal(t, model.DiffEqual, out.Kind)
}

func TestDiffUsesGitExitCodes(t *testing.T) {
	t.Parallel()

	g, fs, _ := newMemGit(t,
		execproc.FakeResponse{Match: "equal.txt", Result: execproc.Result{ExitCode: 0}},
		execproc.FakeResponse{Match: "changed.txt", Result: execproc.Result{ExitCode: 1, Stdout: "@@ -1 +1 @@\n-a\n+b\n"}},
	)
	for _, p := range []string{"/a/equal.txt", "/b/equal.txt", "/a/changed.txt", "/b/changed.txt"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("content"), 0o644))
	}

	out, err := g.Diff(context.Background(), "equal.txt", "/a/equal.txt", "/b/equal.txt")
	require.NoError(t, err)
	assert.True(t, out.IsEqual())

	out, err = g.Diff(context.Background(), "changed.txt", "/a/changed.txt", "/b/changed.txt")
	require.NoError(t, err)
	assert.True(t, out.IsChanged())
	assert.Contains(t, out.Patch, "+b")
}

func TestDiffFallsBackWhenGitFails(t *testing.T) {
	t.Parallel()

	g, fs, _ := newMemGit(t,
		execproc.FakeResponse{Match: "git diff", Result: execproc.Result{ExitCode: 129, Stderr: "usage: git diff"}},
	)
	require.NoError(t, afero.WriteFile(fs, "/a/f.txt", []byte("alpha\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/b/f.txt", []byte("beta\n"), 0o644))

	out, err := g.Diff(context.Background(), "f.txt", "/a/f.txt", "/b/f.txt")
	require.NoError(t, err)
	assert.True(t, out.IsChanged())
	assert.Contains(t, out.Patch, "-alpha")
	assert.Contains(t, out.Patch, "+beta")
}

func TestIgnoreRulesClassifyDiff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("build/\n"), 0o644))

	g := New(afero.NewOsFs(), &execproc.FakeRunner{}, nil)
	require.NoError(t, g.LoadIgnoreRules(dir))

	assert.True(t, g.IsIgnored("build/out.txt"))
	assert.False(t, g.IsIgnored("android/build.gradle"))

	left := filepath.Join(dir, "left.txt")
	right := filepath.Join(dir, "right.txt")
	require.NoError(t, os.WriteFile(left, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(right, []byte("y"), 0o644))

	out, err := g.Diff(context.Background(), "build/out.txt", left, right)
	require.NoError(t, err)
	assert.Equal(t, model.DiffIgnored, out.Kind)
}

func TestInitRepoIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g := New(afero.NewOsFs(), &execproc.FakeRunner{}, nil)
	require.NoError(t, g.InitRepo(dir))
	require.NoError(t, g.InitRepo(dir))

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err)
}

func TestMergeThreeWayReportsConflicts(t *testing.T) {
	t.Parallel()

	conflictBody := "<<<<<<< current\nmine\n||||||| base\norig\n=======\ntheirs\n>>>>>>> target\n"
	g, fs, runner := newMemGit(t,
		execproc.FakeResponse{Match: "merge-file", Result: execproc.Result{ExitCode: 1, Stdout: conflictBody}},
	)
	for _, p := range []string{"/base/f", "/cur/f", "/tgt/f"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("text"), 0o644))
	}

	out, err := g.MergeThreeWay(context.Background(), "f", "/base/f", "/cur/f", "/tgt/f")
	require.NoError(t, err)
	assert.True(t, out.HasConflict)
	assert.Contains(t, out.Body.String(), "<<<<<<<")
	assert.Contains(t, runner.CallLines()[0], "--diff3")
}

func TestMergeTwoWayUsesEmptyAncestor(t *testing.T) {
	t.Parallel()

	g, fs, runner := newMemGit(t,
		execproc.FakeResponse{Match: "merge-file", Result: execproc.Result{ExitCode: 0, Stdout: "merged\n"}},
	)
	require.NoError(t, afero.WriteFile(fs, "/cur/f", []byte("text"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tgt/f", []byte("text2"), 0o644))

	out, err := g.MergeTwoWay(context.Background(), "f", "/cur/f", "/tgt/f")
	require.NoError(t, err)
	assert.False(t, out.HasConflict)
	assert.Equal(t, "merged\n", out.Body.String())
	assert.NotContains(t, runner.CallLines()[0], "--diff3")
}

func TestMergeBinaryContentTakesTarget(t *testing.T) {
	t.Parallel()

	// No scripted responses: a subprocess call would fail the test.
	g, fs, _ := newMemGit(t)
	binary := []byte{0x89, 0x50, 0x4e, 0x47, 0xff}
	require.NoError(t, afero.WriteFile(fs, "/cur/icon.png", binary, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tgt/icon.png", []byte{0xff, 0x00, 0x01}, 0o644))

	out, err := g.MergeThreeWay(context.Background(), "icon.png", "/base/icon.png", "/cur/icon.png", "/tgt/icon.png")
	require.NoError(t, err)
	assert.False(t, out.HasConflict)
	assert.False(t, out.Body.IsText)
	assert.Equal(t, []byte{0xff, 0x00, 0x01}, out.Body.Bytes)
}

func TestMergeMissingInputsAreMaterialized(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	var missingArgs []string
	runner := &execproc.FakeRunner{Responses: []execproc.FakeResponse{{
		Match:  "merge-file",
		Result: execproc.Result{ExitCode: 0, Stdout: "mine\n"},
		Effect: func(cmd execproc.Command) error {
			// The last three args are the current/base/target paths;
			// merge-file exits >=128 on any it cannot open.
			for _, p := range cmd.Args[len(cmd.Args)-3:] {
				if exists, _ := afero.Exists(fs, p); !exists {
					missingArgs = append(missingArgs, p)
				}
			}
			return nil
		},
	}}}
	g := New(fs, runner, nil)
	require.NoError(t, afero.WriteFile(fs, "/cur/f", []byte("mine\n"), 0o644))

	out, err := g.MergeTwoWay(context.Background(), "f", "/cur/f", "/tgt/does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, missingArgs)
	assert.False(t, out.HasConflict)
	assert.Equal(t, "mine\n", out.Body.String())
}

func TestMergeFailureDegradesToTarget(t *testing.T) {
	t.Parallel()

	g, fs, _ := newMemGit(t,
		execproc.FakeResponse{Match: "merge-file", Result: execproc.Result{ExitCode: 255, Stderr: "fatal"}},
	)
	require.NoError(t, afero.WriteFile(fs, "/cur/f", []byte("mine\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/tgt/f", []byte("target\n"), 0o644))

	out, err := g.MergeThreeWay(context.Background(), "f", "/base/f", "/cur/f", "/tgt/f")
	require.NoError(t, err)
	assert.False(t, out.HasConflict)
	assert.Equal(t, "target\n", out.Body.String())
}
