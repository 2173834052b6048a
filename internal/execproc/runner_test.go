package execproc

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	runner := NewRunner(nil)
	res, err := runner.Run(context.Background(), Command{Name: "echo", Args: []string{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Succeeded())
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	runner := NewRunner(nil)
	res, err := runner.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, "oops\n", res.PrimaryOutput())
}

func TestExecRunnerMissingBinary(t *testing.T) {
	t.Parallel()

	runner := NewRunner(nil)
	_, err := runner.Run(context.Background(), Command{Name: "definitely-not-a-binary-uplift"})
	require.Error(t, err)
}

func TestExecRunnerCancelledContext(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(nil)
	_, err := runner.Run(ctx, Command{Name: "sleep", Args: []string{"5"}})
	require.Error(t, err)
}

func TestFakeRunnerMatchesFirstResponse(t *testing.T) {
	t.Parallel()

	fake := &FakeRunner{Responses: []FakeResponse{
		{Match: "git diff", Result: Result{ExitCode: 1, Stdout: "patch"}},
		{Match: "git", Result: Result{}},
	}}

	res, err := fake.Run(context.Background(), Command{Name: "git", Args: []string{"diff", "--no-index", "a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "patch", res.Stdout)
	assert.Len(t, fake.CallLines(), 1)
}

func TestFakeRunnerRejectsUnscriptedCommand(t *testing.T) {
	t.Parallel()

	fake := &FakeRunner{}
	_, err := fake.Run(context.Background(), Command{Name: "git", Args: []string{"init"}})
	require.Error(t, err)
}
