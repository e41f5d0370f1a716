//go:build integration

package integration

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/infra"
	"github.com/eliteGoblin/reclaim/internal/metrics"
	"github.com/eliteGoblin/reclaim/internal/usecase"
)

// recordingSpawner stands in for the detached task launcher: it records the
// command line instead of starting a process.
type recordingSpawner struct {
	mu    sync.Mutex
	calls [][]string
}

func (s *recordingSpawner) StartDetached(name string, args ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]string{name}, args...))
	return 4242, nil
}

func (s *recordingSpawner) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.calls...)
}

// flagValue returns the value following flag in a recorded command line.
func flagValue(call []string, flag string) string {
	for i := 0; i+1 < len(call); i++ {
		if call[i] == flag {
			return call[i+1]
		}
	}
	return ""
}

type harness struct {
	spawner  *recordingSpawner
	adapter  *infra.PlatformAdapterImpl
	recorder *metrics.Recorder
	session  *usecase.Session
}

// newHarness wires the real adapter, filesystem and process manager
// with a recording spawner.
func newHarness(logger *zap.Logger) *harness {
	h := &harness{spawner: &recordingSpawner{}, recorder: metrics.NewRecorder()}
	h.adapter = infra.NewPlatformAdapter(
		infra.DetectPlatform(runtime.GOOS),
		infra.NewProcessManager(),
		infra.NewFileSystemManager(),
		&infra.RealCommandRunner{},
		h.spawner,
		infra.DeferredTaskOptions{Executable: "/opt/reclaim/bin/reclaim", Retries: 2, Interval: 10 * time.Millisecond},
		logger,
	)
	reclaimer := usecase.NewReclaimer(
		h.adapter,
		infra.NewTombstoneNamer(),
		usecase.NewScheduler(h.adapter, logger),
		h.recorder,
		usecase.ReclaimerConfig{DeferredDelay: 10 * time.Millisecond, SweepStale: true},
		logger,
	)
	h.session = usecase.NewSession(
		usecase.NewTerminator(h.adapter, h.recorder, logger),
		usecase.NewQuiescenceWaiter(0, logger),
		reclaimer,
		h.recorder,
		usecase.SessionConfig{Parallelism: 2},
		logger,
	)
	return h
}
