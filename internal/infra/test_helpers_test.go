package infra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// mockProcessManager is a test double for ProcessManager
type mockProcessManager struct {
	byName     map[string][]int
	findErr    error
	killErrs   map[int]error
	killedPIDs []int
	survivors  map[int]bool
}

func newMockProcessManager() *mockProcessManager {
	return &mockProcessManager{
		byName:    make(map[string][]int),
		killErrs:  make(map[int]error),
		survivors: make(map[int]bool),
	}
}

func (m *mockProcessManager) FindByName(sig domain.ProcessSignature) ([]int, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byName[sig.Name], nil
}

func (m *mockProcessManager) Kill(pid int) error {
	if err := m.killErrs[pid]; err != nil {
		return err
	}
	m.killedPIDs = append(m.killedPIDs, pid)
	return nil
}

func (m *mockProcessManager) IsRunning(pid int) bool {
	return m.survivors[pid]
}

// mockFileSystemManager is a test double for FileSystemManager
type mockFileSystemManager struct {
	present   map[string]bool
	removeErr error
	renameErr error
}

func newMockFileSystemManager(paths ...string) *mockFileSystemManager {
	m := &mockFileSystemManager{present: make(map[string]bool)}
	for _, p := range paths {
		m.present[p] = true
	}
	return m
}

func (m *mockFileSystemManager) Exists(path string) bool {
	return m.present[path]
}

func (m *mockFileSystemManager) RemoveAll(path string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.present, path)
	return nil
}

func (m *mockFileSystemManager) Rename(oldPath, newPath string) error {
	if m.renameErr != nil {
		return m.renameErr
	}
	delete(m.present, oldPath)
	m.present[newPath] = true
	return nil
}

func (m *mockFileSystemManager) Glob(pattern string) ([]string, error) {
	var out []string
	for p := range m.present {
		if strings.HasPrefix(p, strings.TrimSuffix(pattern, "*")) {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockCommandRunner records commands and replays scripted results
type mockCommandRunner struct {
	paths    map[string]string // LookPath results
	results  map[string]error  // keyed by command name
	outputs  map[string]string
	onRun    func(name string, args []string)
	commands []string
}

func newMockCommandRunner() *mockCommandRunner {
	return &mockCommandRunner{
		paths:   make(map[string]string),
		results: make(map[string]error),
		outputs: make(map[string]string),
	}
}

func (m *mockCommandRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.commands = append(m.commands, name+" "+strings.Join(args, " "))
	if m.onRun != nil {
		m.onRun(name, args)
	}
	return []byte(m.outputs[name]), m.results[name]
}

func (m *mockCommandRunner) LookPath(file string) (string, error) {
	if p, ok := m.paths[file]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", file, os.ErrNotExist)
}

// mockSpawner records detached launches
type mockSpawner struct {
	err   error
	name  string
	args  []string
	calls int
}

func (m *mockSpawner) StartDetached(name string, args ...string) (int, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	m.name = name
	m.args = args
	return 4242, nil
}

// stubStrategy is a scripted forced-removal strategy
type stubStrategy struct {
	name      string
	available bool
	err       error
	onRemove  func(path string)
	calls     int
}

func (s *stubStrategy) Name() string      { return s.name }
func (s *stubStrategy) IsAvailable() bool { return s.available }

func (s *stubStrategy) Remove(ctx context.Context, path string) error {
	s.calls++
	if s.onRemove != nil {
		s.onRemove(path)
	}
	return s.err
}

var errExit = errors.New("exit status 1")

var fixedTime = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

var (
	_ domain.ProcessManager        = (*mockProcessManager)(nil)
	_ domain.FileSystemManager     = (*mockFileSystemManager)(nil)
	_ domain.DetachedSpawner       = (*mockSpawner)(nil)
	_ domain.ForcedRemovalStrategy = (*stubStrategy)(nil)
	_ CommandRunner                = (*mockCommandRunner)(nil)
)
