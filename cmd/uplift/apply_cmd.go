package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/uplift/internal/manifest"
)

const conflictMarker = "<<<<<<<"

type applyOptions struct {
	ProjectRoot string
	Force       bool
}

var applyCmdRunner = runApply

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Copy the staged migration into the project and remove the working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectRoot, err := resolveProjectRoot(opts.ProjectRoot)
			if err != nil {
				return err
			}
			opts.ProjectRoot = projectRoot
			return applyCmdRunner(cmd, afero.NewOsFs(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ProjectRoot, "project-root", "p", ".", "Path to the project to update")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Apply even if staged files still contain conflict markers")

	return cmd
}

func runApply(cmd *cobra.Command, fs afero.Fs, opts applyOptions) error {
	m, err := loadStagedManifest(fs, opts.ProjectRoot)
	if err != nil {
		return err
	}
	workingDir := filepath.Join(opts.ProjectRoot, manifest.WorkingDirName)

	if !opts.Force {
		unresolved, err := filesWithConflictMarkers(fs, workingDir, m.ConflictFiles)
		if err != nil {
			return err
		}
		if len(unresolved) > 0 {
			return fmt.Errorf("%d file(s) still contain conflict markers:\n  %s\nresolve them or rerun with --force",
				len(unresolved), strings.Join(unresolved, "\n  "))
		}
	}

	staged := make([]string, 0, len(m.MergedFiles)+len(m.ConflictFiles)+len(m.AddedFiles))
	staged = append(staged, m.MergedFiles...)
	staged = append(staged, m.ConflictFiles...)
	staged = append(staged, m.AddedFiles...)

	for _, rel := range staged {
		src := filepath.Join(workingDir, filepath.FromSlash(rel))
		dest := filepath.Join(opts.ProjectRoot, filepath.FromSlash(rel))

		body, err := afero.ReadFile(fs, src)
		if err != nil {
			return fmt.Errorf("read staged file %s: %w", rel, err)
		}
		if err := fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(fs, dest, body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}

	for _, rel := range m.DeletedFiles {
		dest := filepath.Join(opts.ProjectRoot, filepath.FromSlash(rel))
		if err := fs.Remove(dest); err != nil {
			if exists, _ := afero.Exists(fs, dest); exists {
				return fmt.Errorf("delete %s: %w", rel, err)
			}
		}
	}

	if err := fs.RemoveAll(workingDir); err != nil {
		return fmt.Errorf("remove working directory: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d file(s): %d updated, %d added, %d deleted.\n",
		m.TotalFiles(), len(m.MergedFiles)+len(m.ConflictFiles), len(m.AddedFiles), len(m.DeletedFiles))
	return nil
}

// filesWithConflictMarkers re-reads the staged conflict files; ones the
// user already cleaned up no longer block apply.
func filesWithConflictMarkers(fs afero.Fs, workingDir string, conflictFiles []string) ([]string, error) {
	var unresolved []string
	for _, rel := range conflictFiles {
		body, err := afero.ReadFile(fs, filepath.Join(workingDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("read staged file %s: %w", rel, err)
		}
		if bytes.Contains(body, []byte(conflictMarker)) {
			unresolved = append(unresolved, rel)
		}
	}
	return unresolved, nil
}
