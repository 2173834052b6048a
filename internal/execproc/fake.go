package execproc

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// FakeResponse pairs a command matcher with a canned result.
type FakeResponse struct {
	// Match is checked against "name arg0 arg1 ..." with strings.Contains.
	Match  string
	Result Result
	Err    error
	// Effect runs when the response matches, letting tests materialize
	// files the way the real subprocess would.
	Effect func(cmd Command) error
}

// FakeRunner replays scripted subprocess results. First matching response
// wins; unmatched commands fail loudly so tests do not silently pass.
type FakeRunner struct {
	mu        sync.Mutex
	Responses []FakeResponse
	Calls     []Command
}

var _ Runner = (*FakeRunner)(nil)

// Run matches the invocation against the scripted responses.
func (f *FakeRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	responses := f.Responses
	f.mu.Unlock()

	line := cmd.Name + " " + strings.Join(cmd.Args, " ")
	for _, resp := range responses {
		if !strings.Contains(line, resp.Match) {
			continue
		}
		if resp.Effect != nil {
			if err := resp.Effect(cmd); err != nil {
				return Result{}, err
			}
		}
		return resp.Result, resp.Err
	}

	return Result{}, fmt.Errorf("fake runner: no response scripted for %q", line)
}

// CallLines returns the recorded invocations as single strings.
func (f *FakeRunner) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.Calls))
	for _, call := range f.Calls {
		lines = append(lines, call.Name+" "+strings.Join(call.Args, " "))
	}
	return lines
}
