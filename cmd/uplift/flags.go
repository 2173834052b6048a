package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexisbeaulieu97/uplift/internal/config"
	"github.com/alexisbeaulieu97/uplift/internal/model"
)

// resolveProjectRoot normalizes the project root and verifies it holds a
// migratable project.
func resolveProjectRoot(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("project root is required")
	}

	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root does not exist: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}
	if _, err := os.Stat(filepath.Join(abs, config.MetadataFileName)); err != nil {
		return "", fmt.Errorf("%s does not look like a managed project: missing %s", abs, config.MetadataFileName)
	}

	return abs, nil
}

func parsePlatforms(raw []string) ([]model.PlatformTag, error) {
	var tags []model.PlatformTag
	for _, entry := range raw {
		for _, piece := range strings.Split(entry, ",") {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			tag, err := model.ParsePlatformTag(piece)
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
