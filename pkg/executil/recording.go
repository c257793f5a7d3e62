package executil

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
)

// RecordingExecutor is an Executor for tests. It runs nothing: each call is
// logged as a command line ("cmd /c cls") and answered from Stub.
type RecordingExecutor struct {
	mu    sync.Mutex
	calls []string
	stubs map[string]stub
}

type stub struct {
	out []byte
	err error
}

// Stub makes the command line write out to stdout and return err.
func (e *RecordingExecutor) Stub(line string, out []byte, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stubs == nil {
		e.stubs = make(map[string]stub)
	}
	e.stubs[line] = stub{out: out, err: err}
}

func (e *RecordingExecutor) RunStream(_ context.Context, stdout, _ io.Writer, cmd string, args ...string) error {
	line := strings.Join(append([]string{cmd}, args...), " ")

	e.mu.Lock()
	e.calls = append(e.calls, line)
	s := e.stubs[line]
	e.mu.Unlock()

	if stdout != nil && len(s.out) > 0 {
		_, _ = stdout.Write(s.out)
	}
	return s.err
}

// Calls returns the command lines run so far, oldest first.
func (e *RecordingExecutor) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}
