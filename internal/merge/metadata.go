package merge

import (
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/uplift/internal/config"
	"github.com/alexisbeaulieu97/uplift/internal/model"
	uplifterrors "github.com/alexisbeaulieu97/uplift/pkg/errors"
)

// MetadataMerger merges the project metadata file semantically: the target
// template's revisions and defaults are taken, while user-set fields
// (project identity, language choices, unmanaged paths, extra platform
// entries) are preserved. A line-based merge of this file would conflict on
// every migration, which is why it gets a custom merger.
type MetadataMerger struct{}

// NewMetadataMerger creates the metadata merger.
func NewMetadataMerger() *MetadataMerger { return &MetadataMerger{} }

var _ CustomMerger = (*MetadataMerger)(nil)

// Matches claims only the metadata file at the project root.
func (m *MetadataMerger) Matches(rel string) bool {
	return rel == config.MetadataFileName
}

// Merge combines current and target metadata. The base version is not
// needed: the merge is keyed, not positional.
func (m *MetadataMerger) Merge(rel string, current, base, target []byte) (model.MergeOutcome, error) {
	var currentMeta, targetMeta config.Metadata
	if err := yaml.Unmarshal(current, &currentMeta); err != nil {
		return model.MergeOutcome{}, uplifterrors.NewParseError(rel, 0, err)
	}
	if err := yaml.Unmarshal(target, &targetMeta); err != nil {
		return model.MergeOutcome{}, uplifterrors.NewParseError(rel, 0, err)
	}

	merged := targetMeta

	if currentMeta.ProjectName != "" {
		merged.ProjectName = currentMeta.ProjectName
	}
	if currentMeta.OrgName != "" {
		merged.OrgName = currentMeta.OrgName
	}
	if currentMeta.AndroidLanguage != "" {
		merged.AndroidLanguage = currentMeta.AndroidLanguage
	}
	if currentMeta.IOSLanguage != "" {
		merged.IOSLanguage = currentMeta.IOSLanguage
	}
	merged.UnmanagedFiles = append([]string(nil), currentMeta.UnmanagedFiles...)

	// Platforms the user added that the target template does not know about
	// survive with their recorded revisions.
	if merged.Platforms == nil && len(currentMeta.Platforms) > 0 {
		merged.Platforms = make(map[string]config.PlatformMetadata)
	}
	for tag, pm := range currentMeta.Platforms {
		if _, known := merged.Platforms[tag]; !known {
			merged.Platforms[tag] = pm
		}
	}

	body, err := yaml.Marshal(&merged)
	if err != nil {
		return model.MergeOutcome{}, err
	}

	return model.MergeOutcome{
		LocalPath: rel,
		Body:      model.TextBody(string(body)),
	}, nil
}
