package model

import "fmt"

// PlatformTag identifies one of the platform scaffolds a project may carry.
// PlatformRoot is a pseudo-platform for the top-level, platform-agnostic
// template files.
type PlatformTag string

const (
	PlatformRoot    PlatformTag = "root"
	PlatformAndroid PlatformTag = "android"
	PlatformIOS     PlatformTag = "ios"
	PlatformMacOS   PlatformTag = "macos"
	PlatformLinux   PlatformTag = "linux"
	PlatformWindows PlatformTag = "windows"
	PlatformWeb     PlatformTag = "web"
)

var knownPlatforms = []PlatformTag{
	PlatformRoot,
	PlatformAndroid,
	PlatformIOS,
	PlatformMacOS,
	PlatformLinux,
	PlatformWindows,
	PlatformWeb,
}

// KnownPlatforms returns the closed set of platform tags in stable order.
func KnownPlatforms() []PlatformTag {
	out := make([]PlatformTag, len(knownPlatforms))
	copy(out, knownPlatforms)
	return out
}

// ParsePlatformTag validates a raw string against the closed platform set.
func ParsePlatformTag(raw string) (PlatformTag, error) {
	tag := PlatformTag(raw)
	for _, known := range knownPlatforms {
		if tag == known {
			return tag, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", raw)
}

// RevisionID is an opaque identifier of a toolkit version. Equality is
// identity; the engine never inspects its contents.
type RevisionID string

// PlatformConfig describes which toolkit revision generated a platform's
// scaffold and which revision it was last migrated to. An empty revision
// triggers the fallback policy.
type PlatformConfig struct {
	Platform       PlatformTag
	BaseRevision   RevisionID
	CreateRevision RevisionID
}

// MigrateConfig is the per-project migration configuration loaded from the
// project metadata file.
type MigrateConfig struct {
	ProjectType     string
	VersionRevision RevisionID
	Platforms       map[PlatformTag]PlatformConfig
	// UnmanagedPaths lists files, or directories when suffixed with a
	// separator, that the engine must never touch.
	UnmanagedPaths []string
}
