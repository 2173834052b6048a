package main

import (
	"os"

	"github.com/spf13/afero"

	"github.com/alexisbeaulieu97/uplift/internal/engine"
	"github.com/alexisbeaulieu97/uplift/internal/execproc"
	"github.com/alexisbeaulieu97/uplift/internal/logger"
	"github.com/alexisbeaulieu97/uplift/internal/toolkit"
)

// toolkitRootEnv overrides SDK discovery when the toolkit is not on PATH
// at the conventional location.
const toolkitRootEnv = "UPLIFT_TOOLKIT_ROOT"

func newEnvironment(verbose bool, toolkitBin, toolkitRoot string) (engine.Environment, error) {
	level := "info"
	if verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return engine.Environment{}, err
	}

	if toolkitRoot == "" {
		toolkitRoot = os.Getenv(toolkitRootEnv)
	}

	fs := afero.NewOsFs()
	runner := execproc.NewRunner(log)

	return engine.Environment{
		Fs:      fs,
		Runner:  runner,
		Logger:  log,
		Toolkit: toolkit.New(fs, runner, log, toolkitBin, toolkitRoot),
	}, nil
}
