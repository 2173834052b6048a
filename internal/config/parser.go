package config

import (
	"fmt"
	"regexp"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	uplifterrors "github.com/alexisbeaulieu97/uplift/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseMetadata loads a project metadata file from disk, validates it, and
// returns the resulting model.
func ParseMetadata(fs afero.Fs, path string) (*Metadata, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, uplifterrors.NewParseError(path, 0, err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, uplifterrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateMetadata(&meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// SaveMetadata serializes metadata back to its on-disk YAML form.
func SaveMetadata(fs afero.Fs, path string, meta *Metadata) error {
	data, err := MarshalMetadata(meta)
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

// MarshalMetadata renders metadata as YAML without touching the filesystem.
func MarshalMetadata(meta *Metadata) ([]byte, error) {
	if meta == nil {
		return nil, uplifterrors.NewValidationError("metadata", "metadata is nil", nil)
	}
	if err := ValidateMetadata(meta); err != nil {
		return nil, err
	}
	return yaml.Marshal(meta)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
