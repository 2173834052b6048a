package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/uplift/internal/engine"
	"github.com/alexisbeaulieu97/uplift/internal/model"
	"github.com/alexisbeaulieu97/uplift/internal/toolkit"
)

type startOptions struct {
	ProjectRoot    string
	BaseAppPath    string
	TargetAppPath  string
	BaseRevision   string
	TargetRevision string
	Platforms      []string
	PreferTwoWay   bool
	KeepTempDirs   bool
	Parallel       int
	ToolkitBin     string
	ToolkitRoot    string
	Verbose        bool
}

var startCmdRunner = runStart

func newStartCmd(root *rootFlags) *cobra.Command {
	opts := startOptions{}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Compute a migration and stage it in the working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			return startCmdRunner(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ProjectRoot, "project-root", "p", ".", "Path to the project to migrate")
	cmd.Flags().StringVar(&opts.BaseAppPath, "base-app-path", "", "Use an existing base template instead of generating one")
	cmd.Flags().StringVar(&opts.TargetAppPath, "target-app-path", "", "Use an existing target template instead of generating one")
	cmd.Flags().StringVar(&opts.BaseRevision, "base-revision", "", "Override the recorded base revisions with a single revision")
	cmd.Flags().StringVar(&opts.TargetRevision, "target-revision", "", "Migrate to this revision instead of the installed one")
	cmd.Flags().StringSliceVar(&opts.Platforms, "platforms", nil, "Restrict the migration to these platforms")
	cmd.Flags().BoolVar(&opts.PreferTwoWay, "prefer-two-way-merge", false, "Merge without a common ancestor, surfacing more conflicts")
	cmd.Flags().BoolVar(&opts.KeepTempDirs, "keep-temp-directories", false, "Keep generated template and SDK scratch directories")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 4, "Bound on concurrent per-file operations")
	cmd.Flags().StringVar(&opts.ToolkitBin, "toolkit-bin", toolkit.DefaultBin, "Toolkit CLI command name")
	cmd.Flags().StringVar(&opts.ToolkitRoot, "toolkit-root", "", "Installed SDK root (defaults to $"+toolkitRootEnv+")")

	return cmd
}

func runStart(cmd *cobra.Command, opts startOptions) error {
	projectRoot, err := resolveProjectRoot(opts.ProjectRoot)
	if err != nil {
		return err
	}
	platforms, err := parsePlatforms(opts.Platforms)
	if err != nil {
		return err
	}

	env, err := newEnvironment(opts.Verbose, opts.ToolkitBin, opts.ToolkitRoot)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	orch := engine.New(env)
	result, err := orch.ComputeMigration(ctx, engine.Options{
		Verbose:               opts.Verbose,
		ProjectRoot:           projectRoot,
		BaseAppPath:           opts.BaseAppPath,
		TargetAppPath:         opts.TargetAppPath,
		BaseRevision:          model.RevisionID(opts.BaseRevision),
		TargetRevision:        model.RevisionID(opts.TargetRevision),
		DeleteTempDirectories: !opts.KeepTempDirs,
		Platforms:             platforms,
		PreferTwoWayMerge:     opts.PreferTwoWay,
		Parallel:              opts.Parallel,
	})
	if err != nil {
		return err
	}

	workingDir, err := orch.WriteWorkingDirectory(result, projectRoot)
	if err != nil {
		return err
	}

	if !opts.KeepTempDirs {
		if cleanupErr := orch.Cleanup(result); cleanupErr != nil {
			env.Logger.Error(cleanupErr, "failed to release scratch directories")
		}
	}

	out := cmd.OutOrStdout()
	styled := term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Fprintln(out, renderStartSummary(result, workingDir, styled))
	return nil
}
