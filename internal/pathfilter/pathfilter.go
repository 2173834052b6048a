// Package pathfilter provides the pure path predicates the migration engine
// uses to decide which project files it is allowed to touch. All predicates
// operate on canonical forward-slash relative paths.
package pathfilter

import (
	"path"
	"strings"

	"github.com/alexisbeaulieu97/uplift/internal/model"
)

// Files that are always user-owned, regardless of configuration. The entry
// file is hard-coded to the Kotlin extension because every shipped app
// template generates a Kotlin entry point.
var skippedFiles = map[string]struct{}{
	"lib/main.kt":                              {},
	"ios/Runner.xcodeproj/project.pbxproj":     {},
	"android/Runner.iml":                       {},
	"README.md":                                {},
}

// Directories whose entire subtree is user-owned: VCS metadata, the
// toolkit's build cache, app sources, tests, and conventional assets.
var skippedDirectories = []string{
	".git",
	".toolkit_cache",
	"lib",
	"test",
	"assets",
}

// Binary-ish extensions that are replaced wholesale instead of text-merged.
var skipMergeExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// IsStaticallySkipped reports whether the path is on the always-skip list.
func IsStaticallySkipped(rel string) bool {
	if _, ok := skippedFiles[rel]; ok {
		return true
	}
	for _, dir := range skippedDirectories {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

// IsSkipMerge reports whether the file should bypass text merging and be
// replaced with the target copy.
func IsSkipMerge(rel string) bool {
	_, ok := skipMergeExtensions[strings.ToLower(path.Ext(rel))]
	return ok
}

// IsUnmanaged reports whether the path is declared off-limits by the
// project configuration, either directly or through a directory prefix.
func IsUnmanaged(rel string, cfg model.MigrateConfig) bool {
	for _, entry := range cfg.UnmanagedPaths {
		trimmed := strings.TrimSuffix(entry, "/")
		if trimmed == "" {
			continue
		}
		if rel == trimmed {
			return true
		}
		if strings.HasSuffix(entry, "/") && strings.HasPrefix(rel, trimmed+"/") {
			return true
		}
	}
	return false
}
