package engine

import (
	"context"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/execproc"
	"github.com/alexisbeaulieu97/uplift/internal/logger"
	"github.com/alexisbeaulieu97/uplift/internal/model"
	"github.com/alexisbeaulieu97/uplift/internal/revision"
	"github.com/alexisbeaulieu97/uplift/internal/toolkit"
)

// Environment carries the orchestrator's collaborators explicitly. Nothing
// in the engine reaches for process-wide state.
type Environment struct {
	Fs      afero.Fs
	Runner  execproc.Runner
	Logger  *logger.Logger
	Toolkit *toolkit.Toolkit
}

// Options parameterizes a single migration computation.
type Options struct {
	// Verbose adds a per-run summary log after the pipeline finishes.
	Verbose     bool
	ProjectRoot string

	// BaseAppPath and TargetAppPath, when set, are caller-supplied template
	// directories. They are borrowed: the engine uses them in place of
	// materialized templates and never queues them for release.
	BaseAppPath   string
	TargetAppPath string

	// BaseRevision overrides the per-platform recorded revisions with a
	// single base. TargetRevision overrides the installed framework
	// revision as the migration target.
	BaseRevision   model.RevisionID
	TargetRevision model.RevisionID

	// DeleteTempDirectories hands the materialized template directories to
	// the caller for release through the result's TempDirs. When false the
	// scratch directories are left on disk for inspection.
	DeleteTempDirectories bool

	// Platforms restricts the migration to a subset of the configured
	// platforms. Empty means all. The root pseudo-platform is always kept.
	Platforms []model.PlatformTag

	PreferTwoWayMerge bool

	// Parallel bounds the worker pool for the per-file stages. Values
	// below two run the stages sequentially in path order.
	Parallel int
}

// repoService is the slice of the VCS wrapper the orchestrator needs for
// repository bookkeeping.
type repoService interface {
	InitRepo(dir string) error
	LoadIgnoreRules(dir string) error
}

// templateService materializes reference templates and tracks scratch
// directories.
type templateService interface {
	MaterializeBase(ctx context.Context, res revision.Resolution, fallback, target model.RevisionID, opts toolkit.CreateOptions) (string, map[string]model.MergeType, error)
	MaterializeTarget(ctx context.Context, target model.RevisionID, opts toolkit.CreateOptions) (string, error)
	SDKDirs() map[model.RevisionID]string
	TempDirs() []string
}
