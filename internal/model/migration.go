package model

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DiffEqual indicates both sides have identical content.
	DiffEqual = "equal"
	// DiffChanged indicates the sides differ; the outcome carries the patch.
	DiffChanged = "changed"
	// DiffAddedOnly indicates only the right-hand side exists.
	DiffAddedOnly = "added_only"
	// DiffDeletedOnly indicates only the left-hand side exists.
	DiffDeletedOnly = "deleted_only"
	// DiffIgnored indicates the path is covered by VCS ignore rules.
	DiffIgnored = "ignored"
)

// DiffOutcome is the structured result of diffing an ordered pair of files.
type DiffOutcome struct {
	Kind  string
	Patch string
}

// IsEqual reports whether the diff found no change.
func (d DiffOutcome) IsEqual() bool { return d.Kind == DiffEqual }

// IsChanged reports whether the diff produced a patch.
func (d DiffOutcome) IsChanged() bool { return d.Kind == DiffChanged }

// MergeType selects the merge mode for a single file.
type MergeType string

const (
	// MergeTwoWay merges (current, target) without a common ancestor.
	MergeTwoWay MergeType = "two_way"
	// MergeThreeWay merges (base, current, target) with base as ancestor.
	MergeThreeWay MergeType = "three_way"
)

// MergedBody holds merged file content, either textual or raw bytes. Raw
// bytes are used when the content is not valid UTF-8.
type MergedBody struct {
	Bytes  []byte
	IsText bool
}

// TextBody wraps textual merge output.
func TextBody(text string) MergedBody {
	return MergedBody{Bytes: []byte(text), IsText: true}
}

// RawBody wraps binary merge output.
func RawBody(data []byte) MergedBody {
	return MergedBody{Bytes: data, IsText: false}
}

// BodyFor selects text or raw representation based on UTF-8 validity.
func BodyFor(data []byte) MergedBody {
	if utf8.Valid(data) {
		return MergedBody{Bytes: data, IsText: true}
	}
	return MergedBody{Bytes: data, IsText: false}
}

func (b MergedBody) String() string { return string(b.Bytes) }

// MergeOutcome is the per-file result of a generic or custom merge.
type MergeOutcome struct {
	LocalPath   string
	Body        MergedBody
	HasConflict bool
}

// FilePendingMigration is an added or deleted file pending commit to the
// working directory. SourcePath points at the template copy for added files
// and at the project copy for deleted files.
type FilePendingMigration struct {
	LocalPath  string
	SourcePath string
}

// MigrationResult is the top-level output of a migration computation. The
// engine owns the listed temp directories until the result is returned;
// ownership then transfers to the caller, which releases them once the
// manifest has been consumed.
type MigrationResult struct {
	MergeResults []MergeOutcome
	AddedFiles   []FilePendingMigration
	DeletedFiles []FilePendingMigration

	BaseTemplateDir   string
	TargetTemplateDir string
	SDKDirs           map[RevisionID]string
	TempDirs          []string
}

// HasConflicts reports whether any merge outcome carries conflict markers.
func (r *MigrationResult) HasConflicts() bool {
	for _, m := range r.MergeResults {
		if m.HasConflict {
			return true
		}
	}
	return false
}

// ConflictPaths returns the sorted relative paths of conflicted files.
func (r *MigrationResult) ConflictPaths() []string {
	var paths []string
	for _, m := range r.MergeResults {
		if m.HasConflict {
			paths = append(paths, m.LocalPath)
		}
	}
	sort.Strings(paths)
	return paths
}

// CleanRelative normalizes an OS-specific path into the canonical
// forward-slash relative form. Absolute paths and paths escaping the root
// are rejected.
func CleanRelative(p string) (string, error) {
	slashed := filepath.ToSlash(p)
	if path.IsAbs(slashed) || filepath.IsAbs(p) {
		return "", fmt.Errorf("path %q is absolute", p)
	}
	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %q escapes the project root", p)
	}
	if cleaned == "." {
		return "", fmt.Errorf("path %q is empty", p)
	}
	return cleaned, nil
}
