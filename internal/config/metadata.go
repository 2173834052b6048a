package config

import (
	"sort"

	"github.com/alexisbeaulieu97/uplift/internal/model"
)

// MetadataFileName is the metadata file the engine reads from the project
// root and stages back through the custom merger.
const MetadataFileName = ".project_metadata"

// ProjectTypeApp is the only project shape the migration engine supports.
const ProjectTypeApp = "app"

// Metadata is the on-disk schema of the project metadata file.
type Metadata struct {
	ProjectType     string                       `yaml:"project_type" validate:"required"`
	ProjectName     string                       `yaml:"project_name,omitempty"`
	OrgName         string                       `yaml:"org_name,omitempty"`
	VersionRevision string                       `yaml:"version_revision,omitempty" validate:"omitempty,revision"`
	Platforms       map[string]PlatformMetadata  `yaml:"platforms,omitempty" validate:"omitempty,dive,keys,platform_tag,endkeys"`
	UnmanagedFiles  []string                     `yaml:"unmanaged_files,omitempty" validate:"omitempty,dive,min=1"`
	AndroidLanguage string                       `yaml:"android_language,omitempty" validate:"omitempty,oneof=kotlin java"`
	IOSLanguage     string                       `yaml:"ios_language,omitempty" validate:"omitempty,oneof=swift objc"`
}

// PlatformMetadata records the revisions a single platform scaffold was
// created from and last migrated to.
type PlatformMetadata struct {
	BaseRevision   string `yaml:"base_revision,omitempty" validate:"omitempty,revision"`
	CreateRevision string `yaml:"create_revision,omitempty" validate:"omitempty,revision"`
}

// MigrateConfig converts the raw metadata into the engine's configuration
// model. Platform keys were validated during parsing, so conversion cannot
// fail.
func (m *Metadata) MigrateConfig() model.MigrateConfig {
	cfg := model.MigrateConfig{
		ProjectType:     m.ProjectType,
		VersionRevision: model.RevisionID(m.VersionRevision),
		Platforms:       make(map[model.PlatformTag]model.PlatformConfig, len(m.Platforms)),
		UnmanagedPaths:  append([]string(nil), m.UnmanagedFiles...),
	}

	for raw, pm := range m.Platforms {
		tag := model.PlatformTag(raw)
		cfg.Platforms[tag] = model.PlatformConfig{
			Platform:       tag,
			BaseRevision:   model.RevisionID(pm.BaseRevision),
			CreateRevision: model.RevisionID(pm.CreateRevision),
		}
	}

	return cfg
}

// PlatformTags returns the configured platform tags in stable order.
func (m *Metadata) PlatformTags() []model.PlatformTag {
	tags := make([]string, 0, len(m.Platforms))
	for raw := range m.Platforms {
		tags = append(tags, raw)
	}
	sort.Strings(tags)

	out := make([]model.PlatformTag, 0, len(tags))
	for _, raw := range tags {
		out = append(out, model.PlatformTag(raw))
	}
	return out
}
