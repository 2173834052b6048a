package manifest

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/logger"
	"github.com/alexisbeaulieu97/uplift/internal/model"
)

// Writer materializes a migration result into the working directory.
type Writer struct {
	fs  afero.Fs
	log *logger.Logger
}

// NewWriter creates a Writer.
func NewWriter(fs afero.Fs, log *logger.Logger) *Writer {
	return &Writer{fs: fs, log: log.WithComponent("manifest")}
}

// Write stages the result under <projectRoot>/migrate_working_dir and
// writes the manifest index. The user's project tree itself is never
// touched; the apply phase copies from the working directory later.
func (w *Writer) Write(res *model.MigrationResult, projectRoot string) (string, error) {
	workingDir := filepath.Join(projectRoot, WorkingDirName)
	if err := w.fs.MkdirAll(workingDir, 0o755); err != nil {
		return "", err
	}

	for _, out := range res.MergeResults {
		dest := filepath.Join(workingDir, filepath.FromSlash(out.LocalPath))
		if err := w.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", err
		}
		if err := afero.WriteFile(w.fs, dest, out.Body.Bytes, 0o644); err != nil {
			return "", err
		}
	}

	for _, added := range res.AddedFiles {
		body, err := afero.ReadFile(w.fs, added.SourcePath)
		if err != nil {
			return "", err
		}
		dest := filepath.Join(workingDir, filepath.FromSlash(added.LocalPath))
		if err := w.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", err
		}
		if err := afero.WriteFile(w.fs, dest, body, 0o644); err != nil {
			return "", err
		}
	}

	m := FromResult(res)
	if err := m.Save(w.fs, filepath.Join(workingDir, FileName)); err != nil {
		return "", err
	}

	w.log.WithFields(map[string]any{
		"working_dir": workingDir,
		"merged":      len(m.MergedFiles),
		"conflicts":   len(m.ConflictFiles),
		"added":       len(m.AddedFiles),
		"deleted":     len(m.DeletedFiles),
	}).Info("staged migration working directory")

	return workingDir, nil
}
