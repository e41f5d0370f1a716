package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

var errLocked = errors.New("resource busy")

// mockAdapter implements domain.PlatformAdapter for testing.
// Paths in present exist until a primitive that is not blocked for them removes them.
type mockAdapter struct {
	mu sync.Mutex

	present      map[string]bool
	nativeLocked map[string]bool // RemoveDirectory fails with errLocked
	forceLocked  map[string]bool // ForceRemoveDirectory fails with errLocked
	renameErr    error
	scheduleErr  error
	globResult   []string
	globErr      error
	terminate    map[string]domain.TerminationResult

	// Primitives "succeed" without removing anything (exit-0 but still present).
	removeLies bool

	calls          []string
	terminateCalls []string
	scheduled      []string
	scheduleDelays []time.Duration
	removed        []string
}

func newMockAdapter(paths ...string) *mockAdapter {
	m := &mockAdapter{
		present:      make(map[string]bool),
		nativeLocked: make(map[string]bool),
		forceLocked:  make(map[string]bool),
		terminate:    make(map[string]domain.TerminationResult),
	}
	for _, p := range paths {
		m.present[p] = true
	}
	return m
}

func (m *mockAdapter) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockAdapter) TerminateProcessByName(ctx context.Context, sig domain.ProcessSignature) domain.TerminationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminateCalls = append(m.terminateCalls, sig.Name)
	if r, ok := m.terminate[sig.Name]; ok {
		r.Signature = sig
		return r
	}
	return domain.TerminationResult{Signature: sig}
}

func (m *mockAdapter) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present[path]
}

func (m *mockAdapter) RemoveDirectory(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("remove:" + path)
	if m.nativeLocked[path] {
		return errLocked
	}
	if !m.removeLies {
		delete(m.present, path)
	}
	m.removed = append(m.removed, path)
	return nil
}

func (m *mockAdapter) ForceRemoveDirectory(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("force:" + path)
	if m.forceLocked[path] {
		return errLocked
	}
	if !m.removeLies {
		delete(m.present, path)
	}
	return nil
}

func (m *mockAdapter) RenamePath(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("rename:" + oldPath)
	if m.renameErr != nil {
		return m.renameErr
	}
	delete(m.present, oldPath)
	m.present[newPath] = true
	return nil
}

func (m *mockAdapter) Glob(pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globResult, m.globErr
}

func (m *mockAdapter) ScheduleDetachedRemoval(path string, delay time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("schedule:" + path)
	if m.scheduleErr != nil {
		return m.scheduleErr
	}
	m.scheduled = append(m.scheduled, path)
	m.scheduleDelays = append(m.scheduleDelays, delay)
	return nil
}

var _ domain.PlatformAdapter = (*mockAdapter)(nil)

// lock blocks both removal primitives for paths.
func (m *mockAdapter) lock(paths ...string) {
	for _, p := range paths {
		m.nativeLocked[p] = true
		m.forceLocked[p] = true
	}
}

func (m *mockAdapter) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// fixedNamer implements domain.TombstoneNamer with predictable names.
type fixedNamer struct{}

func (fixedNamer) Name(path string) string    { return path + ".reclaim-test" }
func (fixedNamer) Pattern(path string) string { return path + ".reclaim-*" }

// recordingRecorder implements domain.Recorder and keeps everything it sees.
type recordingRecorder struct {
	mu           sync.Mutex
	attempts     []domain.RemovalAttempt
	outcomes     []domain.ReclamationOutcome
	terminations []domain.TerminationResult
	sessions     []domain.SessionReport
}

func (r *recordingRecorder) ObserveAttempt(a domain.RemovalAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func (r *recordingRecorder) ObserveOutcome(o domain.ReclamationOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recordingRecorder) ObserveTermination(t domain.TerminationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminations = append(r.terminations, t)
}

func (r *recordingRecorder) ObserveSession(s domain.SessionReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
}

// mockWaiter implements domain.Waiter for testing.
type mockWaiter struct {
	calls int
	err   error
}

func (w *mockWaiter) Wait(ctx context.Context) error {
	w.calls++
	return w.err
}
