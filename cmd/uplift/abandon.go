package main

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/uplift/internal/manifest"
)

func newAbandonCmd() *cobra.Command {
	var projectRoot string
	var force bool

	cmd := &cobra.Command{
		Use:   "abandon",
		Short: "Discard the staged migration without touching the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProjectRoot(projectRoot)
			if err != nil {
				return err
			}
			return runAbandon(cmd, afero.NewOsFs(), root, force)
		},
	}

	cmd.Flags().StringVarP(&projectRoot, "project-root", "p", ".", "Path to the project")
	cmd.Flags().BoolVar(&force, "force", false, "Discard without asking for confirmation")

	return cmd
}

func runAbandon(cmd *cobra.Command, fs afero.Fs, projectRoot string, force bool) error {
	workingDir := filepath.Join(projectRoot, manifest.WorkingDirName)
	exists, err := afero.DirExists(fs, workingDir)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no staged migration found under %s", projectRoot)
	}

	if !force {
		ok, err := confirm(cmd, fmt.Sprintf("Discard the staged migration under %s? [y/N]: ", workingDir))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Keeping the staged migration.")
			return nil
		}
	}

	if err := fs.RemoveAll(workingDir); err != nil {
		return fmt.Errorf("remove working directory: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Staged migration discarded.")
	return nil
}

// confirm asks a yes/no question on the command's streams. EOF and
// anything but an explicit yes answer no.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
