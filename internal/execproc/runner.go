package execproc

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/alexisbeaulieu97/uplift/internal/logger"
)

// Command describes a single external invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// Result captures everything the engine needs from a finished subprocess.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Succeeded reports whether the process exited with code zero.
func (r Result) Succeeded() bool { return r.ExitCode == 0 }

// PrimaryOutput returns stderr if present, otherwise stdout.
func (r Result) PrimaryOutput() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Runner abstracts subprocess execution so tests can substitute a fake.
//
// Run returns an error only when the process could not be started or the
// context was cancelled; a non-zero exit is reported through
// Result.ExitCode and the caller decides what it means.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands through os/exec. It is the only place the engine
// talks to the operating system's process layer.
type ExecRunner struct {
	log *logger.Logger
}

// NewRunner creates an ExecRunner.
func NewRunner(log *logger.Logger) *ExecRunner {
	return &ExecRunner{log: log.WithComponent("execproc")}
}

var _ Runner = (*ExecRunner)(nil)

// Run executes the command, capturing stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	var stdoutBuf, stderrBuf bytes.Buffer

	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Stdout = &stdoutBuf
	proc.Stderr = &stderrBuf
	if cmd.Dir != "" {
		proc.Dir = cmd.Dir
	}

	r.log.WithFields(map[string]any{
		"command": cmd.Name,
		"args":    strings.Join(cmd.Args, " "),
		"dir":     cmd.Dir,
	}).Debug("running subprocess")

	err := proc.Run()
	result := Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The process ran to completion; the exit code is data, not an
			// error, and the caller interprets it.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
