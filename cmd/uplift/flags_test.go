package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/uplift/internal/config"
	"github.com/alexisbeaulieu97/uplift/internal/model"
)

func TestResolveProjectRootRequiresMetadata(t *testing.T) {
	dir := t.TempDir()

	_, err := resolveProjectRoot(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.MetadataFileName)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.MetadataFileName), []byte("project_type: app\n"), 0o644))

	root, err := resolveProjectRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestResolveProjectRootRejectsFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := resolveProjectRoot(file)
	require.Error(t, err)
}

func TestResolveProjectRootRejectsEmpty(t *testing.T) {
	_, err := resolveProjectRoot("   ")
	require.Error(t, err)
}

func TestParsePlatforms(t *testing.T) {
	tags, err := parsePlatforms([]string{"android,ios", " web "})
	require.NoError(t, err)
	assert.Equal(t, []model.PlatformTag{model.PlatformAndroid, model.PlatformIOS, model.PlatformWeb}, tags)

	_, err = parsePlatforms([]string{"amiga"})
	require.Error(t, err)

	tags, err = parsePlatforms(nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
