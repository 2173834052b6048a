// Package vcs wraps the version-control operations the migration engine
// depends on. Repository initialization and ignore-rule evaluation run in
// process through go-git; file diffs and merges shell out to git because
// the engine's contract relies on git's exit-code and conflict-marker
// behavior.
package vcs

import (
	"errors"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/execproc"
	"github.com/alexisbeaulieu97/uplift/internal/logger"
)

// Git provides diff, merge, and repository services backed by git.
type Git struct {
	fs     afero.Fs
	runner execproc.Runner
	log    *logger.Logger
	ignore gitignore.Matcher
}

// New creates a Git wrapper. The afero filesystem is used for existence
// checks and content reads; subprocess invocations always receive real
// on-disk paths.
func New(fs afero.Fs, runner execproc.Runner, log *logger.Logger) *Git {
	return &Git{fs: fs, runner: runner, log: log.WithComponent("vcs")}
}

// InitRepo initializes a repository in dir. Re-initializing an existing
// repository is not an error; diff and ignore queries just need the
// repository to exist.
func (g *Git) InitRepo(dir string) error {
	_, err := git.PlainInit(dir, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return nil
	}
	return err
}

// LoadIgnoreRules reads the .gitignore chain under dir and installs it as
// the matcher consulted by Diff. Evaluating rules in process avoids one
// check-ignore subprocess per project file.
func (g *Git) LoadIgnoreRules(dir string) error {
	patterns, err := gitignore.ReadPatterns(osfs.New(dir), nil)
	if err != nil {
		return err
	}
	g.ignore = gitignore.NewMatcher(patterns)
	return nil
}

// IsIgnored reports whether the relative path matches the loaded ignore
// rules. Without loaded rules nothing is ignored.
func (g *Git) IsIgnored(rel string) bool {
	if g.ignore == nil {
		return false
	}
	return g.ignore.Match(strings.Split(rel, "/"), false)
}
