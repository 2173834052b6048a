package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/uplift/internal/manifest"
	"github.com/alexisbeaulieu97/uplift/internal/model"
)

type statusStyles struct {
	header   lipgloss.Style
	merged   lipgloss.Style
	conflict lipgloss.Style
	added    lipgloss.Style
	deleted  lipgloss.Style
	hint     lipgloss.Style
}

func newStatusStyles(styled bool) statusStyles {
	if !styled {
		plain := lipgloss.NewStyle()
		return statusStyles{plain, plain, plain, plain, plain, plain}
	}
	return statusStyles{
		header:   lipgloss.NewStyle().Bold(true),
		merged:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		conflict: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		added:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		deleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		hint:     lipgloss.NewStyle().Faint(true),
	}
}

func newStatusCmd() *cobra.Command {
	var projectRoot string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the staged migration and its remaining conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProjectRoot(projectRoot)
			if err != nil {
				return err
			}

			fs := afero.NewOsFs()
			m, err := loadStagedManifest(fs, root)
			if err != nil {
				return err
			}

			styled := term.IsTerminal(int(os.Stdout.Fd()))
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(m, styled))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRoot, "project-root", "p", ".", "Path to the project to inspect")

	return cmd
}

func loadStagedManifest(fs afero.Fs, projectRoot string) (*manifest.Manifest, error) {
	path := filepath.Join(projectRoot, manifest.WorkingDirName, manifest.FileName)
	if exists, err := afero.Exists(fs, path); err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("no staged migration found; run \"uplift start\" first")
	}
	return manifest.Load(fs, path)
}

func renderStatus(m *manifest.Manifest, styled bool) string {
	s := newStatusStyles(styled)
	var b strings.Builder

	b.WriteString(s.header.Render(fmt.Sprintf("Staged migration: %d file(s)", m.TotalFiles())))
	b.WriteString("\n")

	writeSection(&b, s.merged, "merged", m.MergedFiles)
	writeSection(&b, s.conflict, "conflict", m.ConflictFiles)
	writeSection(&b, s.added, "added", m.AddedFiles)
	writeSection(&b, s.deleted, "deleted", m.DeletedFiles)

	if len(m.ConflictFiles) > 0 {
		b.WriteString("\n")
		b.WriteString(s.hint.Render(fmt.Sprintf(
			"%d file(s) contain conflict markers. Edit them under %s/, check with \"uplift resolve-conflicts\", then run \"uplift apply\".",
			len(m.ConflictFiles), manifest.WorkingDirName)))
	} else {
		b.WriteString("\n")
		b.WriteString(s.hint.Render("No conflicts. Run \"uplift apply\" to update the project."))
	}

	return b.String()
}

func writeSection(b *strings.Builder, style lipgloss.Style, label string, paths []string) {
	for _, p := range paths {
		b.WriteString(fmt.Sprintf("  %s  %s\n", style.Render(fmt.Sprintf("%-8s", label)), p))
	}
}

func renderStartSummary(res *model.MigrationResult, workingDir string, styled bool) string {
	s := newStatusStyles(styled)
	var b strings.Builder

	merged := 0
	for _, out := range res.MergeResults {
		if !out.HasConflict {
			merged++
		}
	}
	conflicts := res.ConflictPaths()

	b.WriteString(s.header.Render("Migration staged") + "\n")
	b.WriteString(fmt.Sprintf("  working directory: %s\n", workingDir))
	b.WriteString(fmt.Sprintf("  merged: %d  conflicts: %d  added: %d  deleted: %d\n",
		merged, len(conflicts), len(res.AddedFiles), len(res.DeletedFiles)))

	for _, p := range conflicts {
		b.WriteString(fmt.Sprintf("  %s  %s\n", s.conflict.Render("conflict"), p))
	}

	if len(conflicts) > 0 {
		b.WriteString(s.hint.Render("Resolve the conflicts above, then run \"uplift apply\"."))
	} else {
		b.WriteString(s.hint.Render("Run \"uplift apply\" to update the project."))
	}

	return b.String()
}
