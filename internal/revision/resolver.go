// Package revision maps a project's recorded per-platform base revisions to
// the ordered, de-duplicated list of revisions the materializer must
// generate.
package revision

import (
	"sort"

	"github.com/alexisbeaulieu97/uplift/internal/model"
)

// Resolution is the resolver output: the ordered revisions to materialize
// and, per revision, the platform configs that resolved to it.
type Resolution struct {
	Revisions []model.RevisionID
	Configs   map[model.RevisionID][]model.PlatformConfig
}

// Resolve applies the fallback policy to the configured platforms.
//
// An explicit base override collapses the whole project to a single
// revision. Otherwise each platform resolves to its recorded base revision
// or the fallback, and the root platform's revision is ordered first so the
// platform scaffolds overlay onto a consistent root. The remaining
// revisions are sorted so reruns on identical inputs produce identical
// orderings.
func Resolve(cfg model.MigrateConfig, fallback, baseOverride model.RevisionID) Resolution {
	res := Resolution{Configs: make(map[model.RevisionID][]model.PlatformConfig)}

	tags := make([]model.PlatformTag, 0, len(cfg.Platforms))
	for tag := range cfg.Platforms {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	if baseOverride != "" {
		for _, tag := range tags {
			res.Configs[baseOverride] = append(res.Configs[baseOverride], cfg.Platforms[tag])
		}
		res.Revisions = []model.RevisionID{baseOverride}
		return res
	}

	var rootRevision model.RevisionID
	haveRoot := false
	seen := make(map[model.RevisionID]struct{})

	for _, tag := range tags {
		pc := cfg.Platforms[tag]
		effective := pc.BaseRevision
		if effective == "" {
			effective = fallback
		}

		res.Configs[effective] = append(res.Configs[effective], pc)
		seen[effective] = struct{}{}

		if tag == model.PlatformRoot {
			rootRevision = effective
			haveRoot = true
		}
	}

	rest := make([]model.RevisionID, 0, len(seen))
	for rev := range seen {
		if haveRoot && rev == rootRevision {
			continue
		}
		rest = append(rest, rev)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	if haveRoot {
		res.Revisions = append([]model.RevisionID{rootRevision}, rest...)
	} else {
		res.Revisions = rest
	}

	return res
}
