//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/daemon"
	"github.com/eliteGoblin/reclaim/internal/domain"
	"github.com/eliteGoblin/reclaim/internal/infra"
	"github.com/eliteGoblin/reclaim/test/fixtures"
)

var _ = Describe("Reclamation session", func() {
	var (
		tmpDir string
		tree   *fixtures.FakeBuildTree
		h      *harness
	)

	target := func(dir string) domain.TargetPath {
		return domain.TargetPath{Label: dir, Path: tree.Path(dir)}
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "reclaim-integration-*")
		Expect(err).NotTo(HaveOccurred())
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		tree = fixtures.NewFakeBuildTree(tmpDir)
		h = newHarness(zap.NewNop())
	})

	AfterEach(func() {
		_ = tree.Cleanup()
	})

	Describe("Run", func() {
		Context("when nothing holds the output directories", func() {
			It("should remove them directly", func() {
				Expect(tree.Create("release", "dist")).To(Succeed())

				report, err := h.session.Run(context.Background(), []domain.TargetPath{target("release"), target("dist")}, nil)
				Expect(err).NotTo(HaveOccurred())

				for _, label := range []string{"release", "dist"} {
					outcome := report.Outcomes[label]
					Expect(outcome.Status).To(Equal(domain.StatusRemoved))
					Expect(outcome.Attempts).To(HaveLen(1))
					Expect(outcome.Attempts[0].Strategy).To(Equal(domain.StrategyDirect))
					Expect(tree.Exists(label)).To(BeFalse())
				}
				Expect(h.spawner.Calls()).To(BeEmpty())
				Expect(testutil.ToFloat64(h.recorder.OutcomesTotal.WithLabelValues("removed"))).To(Equal(2.0))
			})
		})

		Context("when a directory has already been removed", func() {
			It("should report it removed without attempts", func() {
				report, err := h.session.Run(context.Background(), []domain.TargetPath{target("out")}, nil)
				Expect(err).NotTo(HaveOccurred())

				Expect(report.Outcomes["out"].Status).To(Equal(domain.StatusRemoved))
				Expect(report.Outcomes["out"].Attempts).To(BeEmpty())
			})
		})

		Context("when the directory cannot be deleted in place", func() {
			BeforeEach(func() {
				if runtime.GOOS == "windows" || os.Geteuid() == 0 {
					Skip("needs permission bits that the current user cannot bypass")
				}
				Expect(tree.Create("release")).To(Succeed())
				Expect(tree.Lock("release")).To(Succeed())
			})

			It("should rename it aside and hand it to the background task", func() {
				report, err := h.session.Run(context.Background(), []domain.TargetPath{target("release")}, nil)
				Expect(err).NotTo(HaveOccurred())

				outcome := report.Outcomes["release"]
				Expect(outcome.Status).To(Equal(domain.StatusDeferredRemoved))
				Expect(outcome.Attempts).To(HaveLen(3))
				Expect(outcome.Attempts[0].Strategy).To(Equal(domain.StrategyDirect))
				Expect(outcome.Attempts[1].Strategy).To(Equal(domain.StrategyForced))
				Expect(outcome.Attempts[2].Strategy).To(Equal(domain.StrategyRename))
				Expect(outcome.Attempts[2].Success).To(BeTrue())

				By("freeing the original path for the next build")
				Expect(tree.Exists("release")).To(BeFalse())
				Expect(outcome.DeferredPath).To(HavePrefix(tree.Path("release") + infra.TombstoneMarker))
				Expect(outcome.DeferredPath).To(BeADirectory())

				By("handing the tombstone to the detached task")
				calls := h.spawner.Calls()
				Expect(calls).To(HaveLen(1))
				Expect(calls[0][1]).To(Equal(infra.DeferredRemoveCommand))
				Expect(flagValue(calls[0], "--path")).To(Equal(outcome.DeferredPath))
			})

			It("should let the background task finish once the lock is released", func() {
				report, err := h.session.Run(context.Background(), []domain.TargetPath{target("release")}, nil)
				Expect(err).NotTo(HaveOccurred())
				tombstone := report.Outcomes["release"].DeferredPath

				Expect(fixtures.Unlock(tombstone)).To(Succeed())

				call := h.spawner.Calls()[0]
				cfg := daemon.RemoverConfig{Path: flagValue(call, "--path"), Delay: time.Millisecond, Retries: 2, Interval: time.Millisecond}
				fs := infra.NewFileSystemManager()
				remover := daemon.NewRemover(cfg, fs, nil, zap.NewNop())

				Expect(remover.Run(context.Background())).To(Succeed())
				Expect(tombstone).NotTo(BeAnExistingFile())
			})
		})

		Context("when earlier runs left tombstones behind", func() {
			It("should sweep them without changing the outcome", func() {
				Expect(tree.Create("dist")).To(Succeed())
				stale, err := tree.CreateTombstone("dist", "20261001T080000-abc123")
				Expect(err).NotTo(HaveOccurred())
				unrelated, err := tree.CreateTombstone("dist-electron", "20261001T080000-abc123")
				Expect(err).NotTo(HaveOccurred())

				report, err := h.session.Run(context.Background(), []domain.TargetPath{target("dist")}, nil)
				Expect(err).NotTo(HaveOccurred())

				outcome := report.Outcomes["dist"]
				Expect(outcome.Status).To(Equal(domain.StatusRemoved))
				Expect(outcome.StaleRemoved).To(ConsistOf(stale))
				Expect(stale).NotTo(BeADirectory())
				Expect(unrelated).To(BeADirectory(), "only tombstones of the same target are swept")
			})
		})

		Context("when a target path is invalid", func() {
			It("should reject the whole session before touching anything", func() {
				Expect(tree.Create("release")).To(Succeed())
				targets := []domain.TargetPath{target("release"), {Label: "rel", Path: "relative/out"}}

				_, err := h.session.Run(context.Background(), targets, nil)

				Expect(err).To(MatchError(domain.ErrInvalidTarget))
				Expect(tree.Exists("release")).To(BeTrue())
			})
		})
	})

	Describe("Terminator", func() {
		It("should tolerate signatures that match nothing", func() {
			sig := domain.ProcessSignature{Name: "reclaim-no-such-process-" + strings.Repeat("x", 8)}

			report, err := h.session.Run(context.Background(), []domain.TargetPath{target("out")}, []domain.ProcessSignature{sig})
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Terminations).To(HaveLen(1))
			Expect(report.Terminations[0].Terminated).To(BeFalse())
			Expect(report.Terminations[0].Err).NotTo(HaveOccurred())
		})
	})
})
