package runner

import (
	"context"
	"sync"
	"time"

	gantryerrors "github.com/gantryci/gantry/internal/errors"
)

// mockResponse holds the canned output for one command.
type mockResponse struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
	delay    time.Duration
}

// MockRunner implements CommandRunner with a response map for testing.
// Commands without a configured response fail with ErrCommandNotConfigured,
// which makes missing expectations visible instead of silently succeeding.
// It records every executed command so tests can assert ordering and that
// skipped phases issued zero invocations.
type MockRunner struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	calls     []string
}

// NewMockRunner creates an empty mock command runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{responses: make(map[string]mockResponse)}
}

// SetResponse configures the response for a specific command.
func (m *MockRunner) SetResponse(command, stdout, stderr string, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[command] = mockResponse{stdout: stdout, stderr: stderr, exitCode: exitCode, err: err}
}

// SetResponseWithDelay configures a response with an artificial delay,
// used to exercise timeout handling.
func (m *MockRunner) SetResponseWithDelay(command, stdout, stderr string, exitCode int, err error, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[command] = mockResponse{stdout: stdout, stderr: stderr, exitCode: exitCode, err: err, delay: delay}
}

// Calls returns the commands executed so far, in order.
func (m *MockRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Run implements CommandRunner.Run.
func (m *MockRunner) Run(ctx context.Context, _, command string) (stdout, stderr string, exitCode int, err error) {
	m.mu.Lock()
	m.calls = append(m.calls, command)
	resp, ok := m.responses[command]
	m.mu.Unlock()

	if !ok {
		return "", "command not configured", 1, gantryerrors.ErrCommandNotConfigured
	}

	if resp.delay > 0 {
		select {
		case <-ctx.Done():
			return "", "context canceled", 1, ctx.Err()
		case <-time.After(resp.delay):
		}
	}

	return resp.stdout, resp.stderr, resp.exitCode, resp.err
}

// Ensure MockRunner implements CommandRunner.
var _ CommandRunner = (*MockRunner)(nil)
