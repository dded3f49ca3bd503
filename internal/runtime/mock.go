package runtime

import (
	"context"
	"fmt"
	"sync"
)

// MockManager is a mock implementation of Manager for testing
type MockManager struct {
	mu sync.RWMutex

	// ExecResults maps commands to predefined exec responses
	ExecResults map[string]*ExecResponse

	// Errors allows injecting errors for specific operations
	Errors map[string]error

	// CallLog records all method calls for verification
	CallLog []MockCall

	// Hooks run before the named operation returns, outside the lock.
	// Tests use them to block an operation or observe intermediate state.
	Hooks map[string]func(ctx context.Context)

	// RSSBytes is reported by Status while running
	RSSBytes uint64

	running bool
	pid     int
	nextPID int
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Args   []interface{}
}

// NewMockManager creates a new mock manager
func NewMockManager() *MockManager {
	return &MockManager{
		ExecResults: make(map[string]*ExecResponse),
		Errors:      make(map[string]error),
		Hooks:       make(map[string]func(ctx context.Context)),
		CallLog:     make([]MockCall, 0),
		nextPID:     1000,
	}
}

func (m *MockManager) record(method string, args ...interface{}) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SetError sets an error to be returned for a specific operation.
// A nil err clears it.
func (m *MockManager) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.Errors, operation)
		return
	}
	m.Errors[operation] = err
}

// SetExecResult sets the response for exec requests with the given command
func (m *MockManager) SetExecResult(command string, resp *ExecResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecResults[command] = resp
}

// SetHook installs fn to run during the named operation
func (m *MockManager) SetHook(operation string, fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hooks[operation] = fn
}

// Crash marks the process as exited without going through Stop
func (m *MockManager) Crash() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

// GetCalls returns all recorded calls
func (m *MockManager) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// GetCallsFor returns all calls for a specific method
func (m *MockManager) GetCallsFor(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Running reports whether the mock process is up
func (m *MockManager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Reset clears all state
func (m *MockManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecResults = make(map[string]*ExecResponse)
	m.Errors = make(map[string]error)
	m.Hooks = make(map[string]func(ctx context.Context))
	m.CallLog = make([]MockCall, 0)
	m.running = false
	m.pid = 0
}

func (m *MockManager) runHook(ctx context.Context, operation string) {
	m.mu.RLock()
	fn := m.Hooks[operation]
	m.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

// Start allocates a PID and marks the process running
func (m *MockManager) Start(ctx context.Context) error {
	m.mu.Lock()
	m.record("Start")
	err := m.Errors["Start"]
	m.mu.Unlock()

	m.runHook(ctx, "Start")

	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("sandbox process already running (pid %d)", m.pid)
	}
	m.nextPID++
	m.pid = m.nextPID
	m.running = true
	return nil
}

// Stop marks the process stopped
func (m *MockManager) Stop(ctx context.Context, force bool) error {
	m.mu.Lock()
	m.record("Stop", force)
	err := m.Errors["Stop"]
	m.mu.Unlock()

	m.runHook(ctx, "Stop")

	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.pid = 0
	return nil
}

// Exec returns the configured response for req.Command, or an empty
// successful response
func (m *MockManager) Exec(ctx context.Context, req ExecRequest) (*ExecResponse, error) {
	m.mu.Lock()
	m.record("Exec", req)
	err := m.Errors["Exec"]
	result, ok := m.ExecResults[req.Command]
	m.mu.Unlock()

	m.runHook(ctx, "Exec")

	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = "mock-exec"
	}
	if ok {
		resp := *result
		resp.ID = id
		return &resp, nil
	}
	return &ExecResponse{ID: id}, nil
}

// Status reports the mock process fields
func (m *MockManager) Status(ctx context.Context) LiveStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Status")

	if m.pid == 0 {
		return LiveStatus{}
	}
	st := LiveStatus{PID: m.pid, Running: m.running}
	if m.running {
		st.RSSBytes = m.RSSBytes
	} else {
		st.ExitError = "exited"
	}
	return st
}

// Ensure MockManager implements Manager
var _ Manager = (*MockManager)(nil)
