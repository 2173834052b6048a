// Package toolkit drives the UI toolkit's command line: locating the
// installed SDK, cloning it at arbitrary revisions, and regenerating
// template projects from it.
package toolkit

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/execproc"
	"github.com/alexisbeaulieu97/uplift/internal/logger"
	"github.com/alexisbeaulieu97/uplift/internal/model"
	uplifterrors "github.com/alexisbeaulieu97/uplift/pkg/errors"
)

// DefaultBin is the conventional name of the toolkit CLI.
const DefaultBin = "toolkit"

// Toolkit wraps the toolkit CLI installed at Root.
type Toolkit struct {
	fs     afero.Fs
	runner execproc.Runner
	log    *logger.Logger

	// Bin is the toolkit CLI command name; Root is the installed SDK root
	// located by the host.
	Bin  string
	Root string
}

// New creates a Toolkit wrapper.
func New(fs afero.Fs, runner execproc.Runner, log *logger.Logger, bin, root string) *Toolkit {
	if bin == "" {
		bin = DefaultBin
	}
	return &Toolkit{fs: fs, runner: runner, log: log.WithComponent("toolkit"), Bin: bin, Root: root}
}

// InstalledRevision reports the framework revision of the installed SDK.
func (t *Toolkit) InstalledRevision(ctx context.Context) (model.RevisionID, error) {
	res, err := t.runner.Run(ctx, execproc.Command{
		Name: "git",
		Args: []string{"rev-parse", "HEAD"},
		Dir:  t.Root,
	})
	if err != nil {
		return "", err
	}
	if !res.Succeeded() {
		return "", uplifterrors.NewProcessError("git rev-parse", res.ExitCode, strings.TrimSpace(res.Stderr), nil)
	}

	rev := strings.TrimSpace(res.Stdout)
	if rev == "" {
		return "", fmt.Errorf("installed SDK at %s reported an empty revision", t.Root)
	}
	return model.RevisionID(rev), nil
}

// CloneAt clones the toolkit at the given revision into dir.
func (t *Toolkit) CloneAt(ctx context.Context, rev model.RevisionID, dir string) error {
	res, err := t.runner.Run(ctx, execproc.Command{
		Name: t.Bin,
		Args: []string{"clone", string(rev), dir},
	})
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		return uplifterrors.NewProcessError(t.Bin+" clone", res.ExitCode, strings.TrimSpace(res.Stderr), nil)
	}
	return nil
}

// CreateOptions parameterizes the scaffold generator.
type CreateOptions struct {
	ProjectName     string
	OrgName         string
	AndroidLanguage string
	IOSLanguage     string
	Platforms       []model.PlatformTag
}

// Create invokes the scaffold generator of the SDK cloned at sdkDir,
// writing the generated project into outDir. Successive invocations into
// the same outDir overlay.
func (t *Toolkit) Create(ctx context.Context, sdkDir, outDir string, opts CreateOptions) error {
	args := []string{"create", "--template=app"}
	if opts.OrgName != "" {
		args = append(args, "--org", opts.OrgName)
	}
	if opts.ProjectName != "" {
		args = append(args, "--project-name", opts.ProjectName)
	}
	if opts.AndroidLanguage != "" {
		args = append(args, "--android-language", opts.AndroidLanguage)
	}
	if opts.IOSLanguage != "" {
		args = append(args, "--ios-language", opts.IOSLanguage)
	}
	if len(opts.Platforms) > 0 {
		tags := make([]string, 0, len(opts.Platforms))
		for _, p := range opts.Platforms {
			tags = append(tags, string(p))
		}
		args = append(args, "--platforms", strings.Join(tags, ","))
	}
	args = append(args, outDir)

	res, err := t.runner.Run(ctx, execproc.Command{
		Name: filepath.Join(sdkDir, "bin", t.Bin),
		Args: args,
	})
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		return uplifterrors.NewProcessError(t.Bin+" create", res.ExitCode, strings.TrimSpace(res.Stderr), nil)
	}
	return nil
}
