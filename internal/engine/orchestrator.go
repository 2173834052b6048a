package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/config"
	"github.com/alexisbeaulieu97/uplift/internal/logger"
	"github.com/alexisbeaulieu97/uplift/internal/manifest"
	"github.com/alexisbeaulieu97/uplift/internal/merge"
	"github.com/alexisbeaulieu97/uplift/internal/model"
	"github.com/alexisbeaulieu97/uplift/internal/pathfilter"
	"github.com/alexisbeaulieu97/uplift/internal/revision"
	"github.com/alexisbeaulieu97/uplift/internal/toolkit"
	"github.com/alexisbeaulieu97/uplift/internal/vcs"
	uplifterrors "github.com/alexisbeaulieu97/uplift/pkg/errors"
)

// Orchestrator drives the migration pipeline end to end. The service
// fields are wired to real implementations by New; tests substitute fakes.
type Orchestrator struct {
	env Environment
	log *logger.Logger

	Differ    vcs.Differ
	Merger    vcs.Merger
	Repo      repoService
	Templates templateService
	Registry  *merge.Registry
}

// New creates an Orchestrator wired to git and the toolkit CLI.
func New(env Environment) *Orchestrator {
	git := vcs.New(env.Fs, env.Runner, env.Logger)
	return &Orchestrator{
		env:       env,
		log:       env.Logger.WithComponent("engine"),
		Differ:    git,
		Merger:    git,
		Repo:      git,
		Templates: toolkit.NewMaterializer(env.Toolkit, env.Fs, env.Logger),
		Registry:  merge.DefaultRegistry(),
	}
}

// ComputeMigration runs the full pipeline and returns the assembled result.
// The project tree is never mutated. With DeleteTempDirectories set,
// scratch directory ownership transfers to the caller through the result's
// TempDirs; otherwise the directories stay on disk.
func (o *Orchestrator) ComputeMigration(ctx context.Context, opts Options) (*model.MigrationResult, error) {
	// Pre-flight: an existing working directory means a migration is
	// already staged. This advisory guard is the only concurrency control.
	workingDir := filepath.Join(opts.ProjectRoot, manifest.WorkingDirName)
	if exists, err := afero.DirExists(o.env.Fs, workingDir); err != nil {
		return nil, err
	} else if exists {
		return nil, uplifterrors.NewPreflightError(workingDir)
	}

	meta, err := config.ParseMetadata(o.env.Fs, filepath.Join(opts.ProjectRoot, config.MetadataFileName))
	if err != nil {
		return nil, err
	}
	if meta.ProjectType != config.ProjectTypeApp {
		return nil, uplifterrors.NewUnsupportedProjectError(meta.ProjectType)
	}

	cfg := meta.MigrateConfig()
	restrictPlatforms(&cfg, opts.Platforms)

	fallback, target, err := o.pickRevisions(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	resolution := revision.Resolve(cfg, fallback, opts.BaseRevision)
	createOpts := toolkit.CreateOptions{
		ProjectName:     meta.ProjectName,
		OrgName:         meta.OrgName,
		AndroidLanguage: meta.AndroidLanguage,
		IOSLanguage:     meta.IOSLanguage,
	}

	baseDir, mergeTypes, err := o.baseTemplate(ctx, resolution, fallback, target, createOpts, opts)
	if err != nil {
		return nil, o.abort(err)
	}

	targetDir, err := o.targetTemplate(ctx, target, cfg, createOpts, opts)
	if err != nil {
		return nil, o.abort(err)
	}

	for _, dir := range []string{baseDir, targetDir, opts.ProjectRoot} {
		if err := o.Repo.InitRepo(dir); err != nil {
			return nil, o.abort(err)
		}
	}
	if err := o.Repo.LoadIgnoreRules(opts.ProjectRoot); err != nil {
		return nil, o.abort(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, o.abort(err)
	}

	run := &migrationRun{
		orchestrator: o,
		opts:         opts,
		cfg:          cfg,
		baseDir:      baseDir,
		targetDir:    targetDir,
		mergeTypes:   mergeTypes,
	}

	if err := run.classifyTemplates(ctx); err != nil {
		return nil, o.abort(err)
	}
	if err := run.decideProjectFiles(ctx); err != nil {
		return nil, o.abort(err)
	}

	result := run.assemble()
	result.BaseTemplateDir = baseDir
	result.TargetTemplateDir = targetDir
	result.SDKDirs = o.Templates.SDKDirs()
	if opts.DeleteTempDirectories {
		result.TempDirs = o.Templates.TempDirs()
	}
	if opts.Verbose {
		o.log.WithFields(map[string]any{
			"merged":  len(result.MergeResults),
			"added":   len(result.AddedFiles),
			"deleted": len(result.DeletedFiles),
		}).Info("migration computed")
	}
	return result, nil
}

// WriteWorkingDirectory stages the result under the project root.
func (o *Orchestrator) WriteWorkingDirectory(result *model.MigrationResult, projectRoot string) (string, error) {
	return manifest.NewWriter(o.env.Fs, o.env.Logger).Write(result, projectRoot)
}

// Cleanup releases the scratch directories owned by a result. Borrowed
// caller-supplied template paths never appear in TempDirs, so they are
// never removed here.
func (o *Orchestrator) Cleanup(result *model.MigrationResult) error {
	var firstErr error
	for _, dir := range result.TempDirs {
		if err := o.env.Fs.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	result.TempDirs = nil
	return firstErr
}

// abort releases any scratch directories created before the failure.
func (o *Orchestrator) abort(err error) error {
	for _, dir := range o.Templates.TempDirs() {
		o.env.Fs.RemoveAll(dir)
	}
	return err
}

func (o *Orchestrator) pickRevisions(ctx context.Context, cfg model.MigrateConfig, opts Options) (model.RevisionID, model.RevisionID, error) {
	var installed model.RevisionID
	installedRevision := func() (model.RevisionID, error) {
		if installed != "" {
			return installed, nil
		}
		rev, err := o.env.Toolkit.InstalledRevision(ctx)
		if err != nil {
			return "", err
		}
		installed = rev
		return installed, nil
	}

	fallback := cfg.VersionRevision
	if fallback == "" {
		rev, err := installedRevision()
		if err != nil {
			return "", "", err
		}
		fallback = rev
	}

	target := opts.TargetRevision
	if target == "" {
		rev, err := installedRevision()
		if err != nil {
			return "", "", err
		}
		target = rev
	}
	return fallback, target, nil
}

func (o *Orchestrator) baseTemplate(ctx context.Context, res revision.Resolution, fallback, target model.RevisionID, createOpts toolkit.CreateOptions, opts Options) (string, map[string]model.MergeType, error) {
	// A caller-supplied base template carries no per-file provenance, so
	// every merge there falls back to the two-way default.
	if opts.BaseAppPath != "" {
		return opts.BaseAppPath, map[string]model.MergeType{}, nil
	}
	return o.Templates.MaterializeBase(ctx, res, fallback, target, createOpts)
}

func (o *Orchestrator) targetTemplate(ctx context.Context, target model.RevisionID, cfg model.MigrateConfig, createOpts toolkit.CreateOptions, opts Options) (string, error) {
	if opts.TargetAppPath != "" {
		return opts.TargetAppPath, nil
	}
	for _, pc := range cfg.Platforms {
		if pc.Platform != model.PlatformRoot {
			createOpts.Platforms = append(createOpts.Platforms, pc.Platform)
		}
	}
	sort.Slice(createOpts.Platforms, func(i, j int) bool { return createOpts.Platforms[i] < createOpts.Platforms[j] })
	return o.Templates.MaterializeTarget(ctx, target, createOpts)
}

func restrictPlatforms(cfg *model.MigrateConfig, subset []model.PlatformTag) {
	if len(subset) == 0 {
		return
	}
	keep := map[model.PlatformTag]struct{}{model.PlatformRoot: {}}
	for _, tag := range subset {
		keep[tag] = struct{}{}
	}
	for tag := range cfg.Platforms {
		if _, ok := keep[tag]; !ok {
			delete(cfg.Platforms, tag)
		}
	}
}

// migrationRun holds the mutable state of one pipeline execution.
type migrationRun struct {
	orchestrator *Orchestrator
	opts         Options
	cfg          model.MigrateConfig

	baseDir    string
	targetDir  string
	mergeTypes map[string]model.MergeType

	mu           sync.Mutex
	diffMap      map[string]model.DiffOutcome
	mergeResults []model.MergeOutcome
	addedFiles   []model.FilePendingMigration
	deletedFiles []model.FilePendingMigration
}

// classifyTemplates builds the base-vs-target diff map and the added-file
// candidates. All diffs complete before any merge starts because the merge
// mode depends on the finished map.
func (r *migrationRun) classifyTemplates(ctx context.Context) error {
	o := r.orchestrator
	r.diffMap = make(map[string]model.DiffOutcome)

	baseFiles, err := r.listTree(r.baseDir, "")
	if err != nil {
		return err
	}

	err = forEachPath(ctx, baseFiles, r.opts.Parallel, func(rel string) error {
		outcome, diffErr := o.Differ.Diff(ctx, rel, filepath.Join(r.baseDir, filepath.FromSlash(rel)), filepath.Join(r.targetDir, filepath.FromSlash(rel)))
		if diffErr != nil {
			return diffErr
		}
		r.mu.Lock()
		r.diffMap[rel] = outcome
		r.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	targetFiles, err := r.listTree(r.targetDir, "")
	if err != nil {
		return err
	}
	for _, rel := range targetFiles {
		if _, seen := r.diffMap[rel]; seen {
			continue
		}
		if pathfilter.IsUnmanaged(rel, r.cfg) {
			continue
		}
		r.diffMap[rel] = model.DiffOutcome{Kind: model.DiffAddedOnly}

		// Only files absent from the user's project are plain additions; a
		// project file at the same path goes through the merge decision.
		projectPath := filepath.Join(r.opts.ProjectRoot, filepath.FromSlash(rel))
		if exists, _ := afero.Exists(o.env.Fs, projectPath); exists {
			continue
		}
		r.addedFiles = append(r.addedFiles, model.FilePendingMigration{
			LocalPath:  rel,
			SourcePath: filepath.Join(r.targetDir, filepath.FromSlash(rel)),
		})
	}

	return nil
}

// decideProjectFiles walks the user's project and classifies every file
// into unchanged, deleted, take-target, or merged.
func (r *migrationRun) decideProjectFiles(ctx context.Context) error {
	projectFiles, err := r.listTree(r.opts.ProjectRoot, manifest.WorkingDirName)
	if err != nil {
		return err
	}

	return forEachPath(ctx, projectFiles, r.opts.Parallel, func(rel string) error {
		return r.decideOne(ctx, rel)
	})
}

func (r *migrationRun) decideOne(ctx context.Context, rel string) error {
	o := r.orchestrator

	if pathfilter.IsUnmanaged(rel, r.cfg) {
		return nil
	}

	projectPath := filepath.Join(r.opts.ProjectRoot, filepath.FromSlash(rel))
	basePath := filepath.Join(r.baseDir, filepath.FromSlash(rel))
	targetPath := filepath.Join(r.targetDir, filepath.FromSlash(rel))

	// Binary-ish files are replaced wholesale instead of text-merged.
	if pathfilter.IsSkipMerge(rel) {
		return r.replaceWholesale(rel, projectPath, targetPath)
	}

	userDiff, err := o.Differ.Diff(ctx, rel, projectPath, basePath)
	if err != nil {
		return err
	}
	if userDiff.Kind == model.DiffIgnored {
		return nil
	}
	targetDiff, err := o.Differ.Diff(ctx, rel, projectPath, targetPath)
	if err != nil {
		return err
	}
	if targetDiff.Kind == model.DiffIgnored {
		return nil
	}

	// Already at target.
	if targetDiff.IsEqual() {
		return nil
	}

	// A file the user created outside either template is not the engine's
	// to touch.
	if userDiff.Kind == model.DiffDeletedOnly && targetDiff.Kind == model.DiffDeletedOnly {
		return nil
	}

	r.mu.Lock()
	templateDiff := r.diffMap[rel]
	r.mu.Unlock()

	// The user left the file untouched: follow the template's lead.
	if userDiff.IsEqual() {
		switch templateDiff.Kind {
		case model.DiffDeletedOnly:
			r.append(model.MergeOutcome{}, &model.FilePendingMigration{LocalPath: rel, SourcePath: projectPath}, true)
		case model.DiffChanged, model.DiffAddedOnly:
			body, readErr := afero.ReadFile(o.env.Fs, targetPath)
			if readErr != nil {
				return readErr
			}
			r.append(model.MergeOutcome{LocalPath: rel, Body: model.BodyFor(body)}, nil, false)
		}
		return nil
	}

	// The target deleted a file the user modified. Stage the user's content
	// as a conflict against the empty target so apply cannot silently drop
	// the edits.
	if templateDiff.Kind == model.DiffDeletedOnly {
		current, readErr := afero.ReadFile(o.env.Fs, projectPath)
		if readErr != nil {
			return readErr
		}
		r.append(deletionConflict(rel, current), nil, false)
		return nil
	}

	// The user changed the file and the template moved too: merge.
	if custom, ok := o.Registry.Find(rel); ok {
		outcome, customErr := r.customMerge(custom, rel, projectPath, basePath, targetPath)
		if customErr == nil {
			r.append(outcome, nil, false)
			return nil
		}
		o.log.WithFields(map[string]any{"path": rel}).Warn("custom merger failed, using generic merge")
	}

	mergeType, tracked := r.mergeTypes[rel]
	if !tracked {
		mergeType = model.MergeTwoWay
	}
	if r.opts.PreferTwoWayMerge || samePatchBody(userDiff.Patch, targetDiff.Patch) {
		mergeType = model.MergeTwoWay
	}

	var outcome model.MergeOutcome
	if mergeType == model.MergeThreeWay {
		outcome, err = o.Merger.MergeThreeWay(ctx, rel, basePath, projectPath, targetPath)
	} else {
		outcome, err = o.Merger.MergeTwoWay(ctx, rel, projectPath, targetPath)
	}
	if err != nil {
		return err
	}
	r.append(outcome, nil, false)
	return nil
}

func (r *migrationRun) replaceWholesale(rel, projectPath, targetPath string) error {
	o := r.orchestrator
	targetExists, err := afero.Exists(o.env.Fs, targetPath)
	if err != nil || !targetExists {
		return err
	}
	targetBody, err := afero.ReadFile(o.env.Fs, targetPath)
	if err != nil {
		return err
	}
	currentBody, err := afero.ReadFile(o.env.Fs, projectPath)
	if err != nil {
		return err
	}
	if bytes.Equal(currentBody, targetBody) {
		return nil
	}
	r.append(model.MergeOutcome{LocalPath: rel, Body: model.BodyFor(targetBody)}, nil, false)
	return nil
}

func (r *migrationRun) customMerge(custom merge.CustomMerger, rel, projectPath, basePath, targetPath string) (model.MergeOutcome, error) {
	o := r.orchestrator
	current, err := afero.ReadFile(o.env.Fs, projectPath)
	if err != nil {
		return model.MergeOutcome{}, err
	}
	base, _ := afero.ReadFile(o.env.Fs, basePath)
	target, err := afero.ReadFile(o.env.Fs, targetPath)
	if err != nil {
		return model.MergeOutcome{}, err
	}
	return custom.Merge(rel, current, base, target)
}

func (r *migrationRun) append(outcome model.MergeOutcome, deleted *model.FilePendingMigration, isDelete bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if isDelete {
		r.deletedFiles = append(r.deletedFiles, *deleted)
		return
	}
	r.mergeResults = append(r.mergeResults, outcome)
}

// assemble sorts the output collections so reruns on identical inputs are
// stable regardless of worker scheduling.
func (r *migrationRun) assemble() *model.MigrationResult {
	sort.Slice(r.mergeResults, func(i, j int) bool { return r.mergeResults[i].LocalPath < r.mergeResults[j].LocalPath })
	sort.Slice(r.addedFiles, func(i, j int) bool { return r.addedFiles[i].LocalPath < r.addedFiles[j].LocalPath })
	sort.Slice(r.deletedFiles, func(i, j int) bool { return r.deletedFiles[i].LocalPath < r.deletedFiles[j].LocalPath })

	return &model.MigrationResult{
		MergeResults: r.mergeResults,
		AddedFiles:   r.addedFiles,
		DeletedFiles: r.deletedFiles,
	}
}

// listTree returns the sorted relative paths of all files under root,
// minus statically skipped paths and the optional excluded top-level
// directory.
func (r *migrationRun) listTree(root, exclude string) ([]string, error) {
	var files []string
	err := afero.Walk(r.orchestrator.env.Fs, root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil || info == nil || info.IsDir() {
			return walkErr
		}
		relOS, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel, relErr := model.CleanRelative(relOS)
		if relErr != nil {
			return relErr
		}
		if exclude != "" && (rel == exclude || strings.HasPrefix(rel, exclude+"/")) {
			return nil
		}
		if pathfilter.IsStaticallySkipped(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// deletionConflict embeds the user's content in conflict markers against an
// empty target side, using the marker labels git merge-file emits.
func deletionConflict(rel string, current []byte) model.MergeOutcome {
	var b bytes.Buffer
	b.WriteString("<<<<<<< current\n")
	b.Write(current)
	if len(current) > 0 && current[len(current)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString("=======\n>>>>>>> target\n")
	return model.MergeOutcome{LocalPath: rel, Body: model.BodyFor(b.Bytes()), HasConflict: true}
}

// samePatchBody compares two patches from the first hunk marker onward,
// discarding the unstable header lines. Equal bodies mean the user's
// content is the same distance from base and target, so a three-way merge
// would reapply work the user already has.
func samePatchBody(userPatch, targetPatch string) bool {
	if userPatch == "" || targetPatch == "" {
		return false
	}
	return fromFirstHunk(userPatch) == fromFirstHunk(targetPatch)
}

func fromFirstHunk(patch string) string {
	if idx := strings.Index(patch, "@@"); idx >= 0 {
		return patch[idx:]
	}
	return patch
}
