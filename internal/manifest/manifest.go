// Package manifest stages a migration result on disk: every merged,
// conflicted, and added file at its original relative path under the
// working directory, plus an index file the status and apply phases
// consume.
package manifest

import (
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/uplift/internal/model"
	uplifterrors "github.com/alexisbeaulieu97/uplift/pkg/errors"
)

const (
	// WorkingDirName is the staging directory created under the project root.
	WorkingDirName = "migrate_working_dir"
	// FileName is the manifest index inside the working directory.
	FileName = "manifest.yaml"
)

// Manifest indexes the working directory's contents by classification. All
// lists are sorted so reruns on identical inputs are byte-identical.
type Manifest struct {
	MergedFiles   []string `yaml:"merged_files"`
	ConflictFiles []string `yaml:"conflict_files"`
	AddedFiles    []string `yaml:"added_files"`
	DeletedFiles  []string `yaml:"deleted_files"`
}

// FromResult builds the manifest for a migration result.
func FromResult(res *model.MigrationResult) *Manifest {
	m := &Manifest{}
	for _, out := range res.MergeResults {
		if out.HasConflict {
			m.ConflictFiles = append(m.ConflictFiles, out.LocalPath)
		} else {
			m.MergedFiles = append(m.MergedFiles, out.LocalPath)
		}
	}
	for _, f := range res.AddedFiles {
		m.AddedFiles = append(m.AddedFiles, f.LocalPath)
	}
	for _, f := range res.DeletedFiles {
		m.DeletedFiles = append(m.DeletedFiles, f.LocalPath)
	}

	sort.Strings(m.MergedFiles)
	sort.Strings(m.ConflictFiles)
	sort.Strings(m.AddedFiles)
	sort.Strings(m.DeletedFiles)
	return m
}

// Load reads a manifest index from disk.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, uplifterrors.NewParseError(path, 0, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, uplifterrors.NewParseError(path, 0, err)
	}
	return &m, nil
}

// Save writes the manifest index.
func (m *Manifest) Save(fs afero.Fs, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

// TotalFiles counts every path the manifest references.
func (m *Manifest) TotalFiles() int {
	return len(m.MergedFiles) + len(m.ConflictFiles) + len(m.AddedFiles) + len(m.DeletedFiles)
}
