package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/uplift/internal/manifest"
)

func newResolveConflictsCmd() *cobra.Command {
	var projectRoot string

	cmd := &cobra.Command{
		Use:   "resolve-conflicts",
		Short: "List staged files that still contain conflict markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProjectRoot(projectRoot)
			if err != nil {
				return err
			}
			return runResolveConflicts(cmd, afero.NewOsFs(), root)
		},
	}

	cmd.Flags().StringVarP(&projectRoot, "project-root", "p", ".", "Path to the project")

	return cmd
}

func runResolveConflicts(cmd *cobra.Command, fs afero.Fs, projectRoot string) error {
	m, err := loadStagedManifest(fs, projectRoot)
	if err != nil {
		return err
	}

	workingDir := filepath.Join(projectRoot, manifest.WorkingDirName)
	unresolved, err := filesWithConflictMarkers(fs, workingDir, m.ConflictFiles)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(unresolved) == 0 {
		fmt.Fprintln(out, "All conflicts resolved. Run \"uplift apply\" to update the project.")
		return nil
	}

	fmt.Fprintf(out, "%d file(s) still contain conflict markers:\n  %s\n",
		len(unresolved), strings.Join(unresolved, "\n  "))
	fmt.Fprintf(out, "Edit them under %s/ and rerun this command.\n", manifest.WorkingDirName)
	return nil
}
