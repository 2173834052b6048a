package toolkit

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/logger"
	"github.com/alexisbeaulieu97/uplift/internal/model"
	"github.com/alexisbeaulieu97/uplift/internal/revision"
	uplifterrors "github.com/alexisbeaulieu97/uplift/pkg/errors"
)

// Materializer regenerates reference template projects at the revisions the
// resolver selected. It owns the scratch directories it creates until the
// orchestrator collects them via TempDirs.
type Materializer struct {
	toolkit *Toolkit
	fs      afero.Fs
	log     *logger.Logger

	// sdkDirs caches scratch SDK clones. A revision that fell back to
	// another shares the surviving clone, so each unique revision is cloned
	// at most once.
	sdkDirs  map[model.RevisionID]string
	tempDirs []string
}

// NewMaterializer creates a Materializer on top of a Toolkit.
func NewMaterializer(tk *Toolkit, fs afero.Fs, log *logger.Logger) *Materializer {
	return &Materializer{
		toolkit: tk,
		fs:      fs,
		log:     log.WithComponent("materializer"),
		sdkDirs: make(map[model.RevisionID]string),
	}
}

// SDKDirs exposes the clone cache for the migration result.
func (m *Materializer) SDKDirs() map[model.RevisionID]string { return m.sdkDirs }

// TempDirs lists every scratch directory created so far.
func (m *Materializer) TempDirs() []string {
	return append([]string(nil), m.tempDirs...)
}

// EnsureSDK returns a scratch SDK clone for rev, falling back to the
// fallback and target revisions in that order when cloning fails. The
// second return value is the revision that actually materialized.
func (m *Materializer) EnsureSDK(ctx context.Context, rev, fallback, target model.RevisionID) (string, model.RevisionID, error) {
	chain := fallbackChain(rev, fallback, target)

	var attempted []string
	var lastErr error
	for _, candidate := range chain {
		if dir, ok := m.sdkDirs[candidate]; ok {
			m.sdkDirs[rev] = dir
			return dir, candidate, nil
		}

		dir, err := afero.TempDir(m.fs, "", "uplift-sdk-")
		if err != nil {
			return "", "", err
		}

		if err := m.toolkit.CloneAt(ctx, candidate, dir); err != nil {
			if ctx.Err() != nil {
				m.fs.RemoveAll(dir)
				return "", "", err
			}
			m.log.WithFields(map[string]any{"revision": candidate}).Warn("toolkit clone failed, trying next fallback")
			attempted = append(attempted, string(candidate))
			lastErr = err
			m.fs.RemoveAll(dir)
			continue
		}

		m.tempDirs = append(m.tempDirs, dir)
		m.sdkDirs[candidate] = dir
		m.sdkDirs[rev] = dir
		return dir, candidate, nil
	}

	return "", "", uplifterrors.NewRevisionUnavailableError(string(rev), attempted, lastErr)
}

// MaterializeBase generates every resolved revision into one shared base
// template directory and records the default merge type of each file the
// generation introduced: two-way when the file came from the target
// revision itself, three-way otherwise. The first assignment per path wins.
func (m *Materializer) MaterializeBase(ctx context.Context, res revision.Resolution, fallback, target model.RevisionID, opts CreateOptions) (string, map[string]model.MergeType, error) {
	baseDir, err := afero.TempDir(m.fs, "", "uplift-base-template-")
	if err != nil {
		return "", nil, err
	}
	m.tempDirs = append(m.tempDirs, baseDir)

	mergeTypes := make(map[string]model.MergeType)

	for _, rev := range res.Revisions {
		sdkDir, actual, err := m.EnsureSDK(ctx, rev, fallback, target)
		if err != nil {
			return "", nil, err
		}

		revOpts := opts
		revOpts.Platforms = platformsFor(res.Configs[rev])
		if err := m.toolkit.Create(ctx, sdkDir, baseDir, revOpts); err != nil {
			return "", nil, uplifterrors.NewRevisionUnavailableError(string(rev), []string{string(actual)}, err)
		}

		defaultType := model.MergeThreeWay
		if actual == target {
			defaultType = model.MergeTwoWay
		}
		if err := m.assignMergeTypes(baseDir, defaultType, mergeTypes); err != nil {
			return "", nil, err
		}
	}

	return baseDir, mergeTypes, nil
}

// MaterializeTarget generates the target template into its own scratch
// directory using the already-cached target SDK clone.
func (m *Materializer) MaterializeTarget(ctx context.Context, target model.RevisionID, opts CreateOptions) (string, error) {
	sdkDir, _, err := m.EnsureSDK(ctx, target, target, target)
	if err != nil {
		return "", err
	}

	targetDir, err := afero.TempDir(m.fs, "", "uplift-target-template-")
	if err != nil {
		return "", err
	}
	m.tempDirs = append(m.tempDirs, targetDir)

	if err := m.toolkit.Create(ctx, sdkDir, targetDir, opts); err != nil {
		return "", uplifterrors.NewRevisionUnavailableError(string(target), nil, err)
	}
	return targetDir, nil
}

func (m *Materializer) assignMergeTypes(baseDir string, defaultType model.MergeType, mergeTypes map[string]model.MergeType) error {
	return afero.Walk(m.fs, baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return err
		}
		rel, relErr := relativeTo(baseDir, path)
		if relErr != nil {
			return relErr
		}
		if _, exists := mergeTypes[rel]; !exists {
			mergeTypes[rel] = defaultType
		}
		return nil
	})
}

func relativeTo(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return model.CleanRelative(rel)
}

func platformsFor(configs []model.PlatformConfig) []model.PlatformTag {
	var tags []model.PlatformTag
	for _, pc := range configs {
		if pc.Platform == model.PlatformRoot {
			continue
		}
		tags = append(tags, pc.Platform)
	}
	return tags
}

func fallbackChain(rev, fallback, target model.RevisionID) []model.RevisionID {
	chain := make([]model.RevisionID, 0, 3)
	seen := make(map[model.RevisionID]struct{})
	for _, r := range []model.RevisionID{rev, fallback, target} {
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		chain = append(chain, r)
	}
	return chain
}
