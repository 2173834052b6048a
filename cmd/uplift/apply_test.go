package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/uplift/internal/manifest"
)

func stageMigration(t *testing.T, fs afero.Fs, resolveConflict bool) string {
	t.Helper()

	projectRoot := "/proj"
	workingDir := filepath.Join(projectRoot, manifest.WorkingDirName)

	require.NoError(t, afero.WriteFile(fs, filepath.Join(projectRoot, "android/build.gradle"), []byte("old\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(projectRoot, "android/gradle.properties"), []byte("obsolete\n"), 0o644))

	conflictBody := "<<<<<<< current\nmine\n=======\ntheirs\n>>>>>>> target\n"
	if resolveConflict {
		conflictBody = "resolved\n"
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(workingDir, "android/build.gradle"), []byte("merged\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(workingDir, "ios/Podfile"), []byte(conflictBody), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(workingDir, "ios/RunnerTests/Info.plist"), []byte("<plist/>\n"), 0o644))

	m := &manifest.Manifest{
		MergedFiles:   []string{"android/build.gradle"},
		ConflictFiles: []string{"ios/Podfile"},
		AddedFiles:    []string{"ios/RunnerTests/Info.plist"},
		DeletedFiles:  []string{"android/gradle.properties"},
	}
	require.NoError(t, m.Save(fs, filepath.Join(workingDir, manifest.FileName)))

	return projectRoot
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func TestApplyRefusesUnresolvedConflicts(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	projectRoot := stageMigration(t, fs, false)
	cmd, _ := testCommand()

	err := runApply(cmd, fs, applyOptions{ProjectRoot: projectRoot})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ios/Podfile")

	// Nothing was applied.
	body, readErr := afero.ReadFile(fs, filepath.Join(projectRoot, "android/build.gradle"))
	require.NoError(t, readErr)
	assert.Equal(t, "old\n", string(body))
}

func TestApplyCopiesStagedFilesAndRemovesWorkingDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	projectRoot := stageMigration(t, fs, true)
	cmd, buf := testCommand()

	require.NoError(t, runApply(cmd, fs, applyOptions{ProjectRoot: projectRoot}))

	merged, err := afero.ReadFile(fs, filepath.Join(projectRoot, "android/build.gradle"))
	require.NoError(t, err)
	assert.Equal(t, "merged\n", string(merged))

	resolved, err := afero.ReadFile(fs, filepath.Join(projectRoot, "ios/Podfile"))
	require.NoError(t, err)
	assert.Equal(t, "resolved\n", string(resolved))

	added, err := afero.ReadFile(fs, filepath.Join(projectRoot, "ios/RunnerTests/Info.plist"))
	require.NoError(t, err)
	assert.Equal(t, "<plist/>\n", string(added))

	deleted, err := afero.Exists(fs, filepath.Join(projectRoot, "android/gradle.properties"))
	require.NoError(t, err)
	assert.False(t, deleted)

	workingDirGone, err := afero.DirExists(fs, filepath.Join(projectRoot, manifest.WorkingDirName))
	require.NoError(t, err)
	assert.False(t, workingDirGone)

	assert.Contains(t, buf.String(), "Applied 4 file(s)")
}

func TestApplyForceOverridesConflicts(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	projectRoot := stageMigration(t, fs, false)
	cmd, _ := testCommand()

	require.NoError(t, runApply(cmd, fs, applyOptions{ProjectRoot: projectRoot, Force: true}))

	body, err := afero.ReadFile(fs, filepath.Join(projectRoot, "ios/Podfile"))
	require.NoError(t, err)
	assert.Contains(t, string(body), conflictMarker)
}

func TestApplyWithoutStagedMigration(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cmd, _ := testCommand()

	err := runApply(cmd, fs, applyOptions{ProjectRoot: "/proj"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uplift start")
}

func TestAbandonForceRemovesWorkingDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	projectRoot := stageMigration(t, fs, false)
	cmd, buf := testCommand()

	require.NoError(t, runAbandon(cmd, fs, projectRoot, true))
	assert.Contains(t, buf.String(), "discarded")

	exists, err := afero.DirExists(fs, filepath.Join(projectRoot, manifest.WorkingDirName))
	require.NoError(t, err)
	assert.False(t, exists)

	// Project files untouched.
	body, err := afero.ReadFile(fs, filepath.Join(projectRoot, "android/build.gradle"))
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(body))

	require.Error(t, runAbandon(cmd, fs, projectRoot, true))
}

func TestAbandonPromptsForConfirmation(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	projectRoot := stageMigration(t, fs, false)
	workingDir := filepath.Join(projectRoot, manifest.WorkingDirName)

	// Declining keeps the working directory.
	cmd, buf := testCommand()
	cmd.SetIn(strings.NewReader("n\n"))
	require.NoError(t, runAbandon(cmd, fs, projectRoot, false))
	assert.Contains(t, buf.String(), "[y/N]")
	assert.Contains(t, buf.String(), "Keeping")

	exists, err := afero.DirExists(fs, workingDir)
	require.NoError(t, err)
	assert.True(t, exists)

	// EOF on stdin counts as declining.
	cmd, _ = testCommand()
	cmd.SetIn(strings.NewReader(""))
	require.NoError(t, runAbandon(cmd, fs, projectRoot, false))
	exists, err = afero.DirExists(fs, workingDir)
	require.NoError(t, err)
	assert.True(t, exists)

	// Confirming discards it.
	cmd, buf = testCommand()
	cmd.SetIn(strings.NewReader("y\n"))
	require.NoError(t, runAbandon(cmd, fs, projectRoot, false))
	assert.Contains(t, buf.String(), "discarded")

	exists, err = afero.DirExists(fs, workingDir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestResolveConflictsReportsRemainingMarkers(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	projectRoot := stageMigration(t, fs, false)

	cmd, buf := testCommand()
	require.NoError(t, runResolveConflicts(cmd, fs, projectRoot))
	assert.Contains(t, buf.String(), "ios/Podfile")

	workingDir := filepath.Join(projectRoot, manifest.WorkingDirName)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(workingDir, "ios/Podfile"), []byte("resolved\n"), 0o644))

	cmd, buf = testCommand()
	require.NoError(t, runResolveConflicts(cmd, fs, projectRoot))
	assert.Contains(t, buf.String(), "All conflicts resolved")
}
