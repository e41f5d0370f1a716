// Package profile holds built-in target and process lists for common packagers.
// Each packager (electron-builder, electron-forge) knows which output
// directories it leaves behind and which processes tend to hold them open.
package profile

import (
	"path/filepath"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// TargetSpec is one output directory of a packager, relative to the project root.
type TargetSpec struct {
	Dir     string   // Relative (or absolute) directory; also the report label
	Holders []string // Processes known to keep this directory open
}

// Profile defines the strategy interface for one packaging pipeline.
type Profile interface {
	// ID returns unique identifier (e.g., "electron-builder").
	ID() string

	// Name returns human-readable name for display.
	Name() string

	// Targets returns directories to reclaim.
	Targets() []TargetSpec

	// ProcessPatterns returns process names to kill before reclaiming.
	// appName is the packaged application's executable (may be empty).
	ProcessPatterns(appName string) []string
}

// ToSessionPlan resolves a profile against a project root.
func ToSessionPlan(p Profile, opts domain.ProfileOptions) *domain.SessionPlan {
	plan := &domain.SessionPlan{ProfileID: p.ID()}

	for _, spec := range p.Targets() {
		path := spec.Dir
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.Root, spec.Dir)
		}
		plan.Targets = append(plan.Targets, domain.TargetPath{
			Path:    path,
			Label:   spec.Dir,
			Holders: toSignatures(spec.Holders),
		})
	}

	plan.Signatures = toSignatures(p.ProcessPatterns(opts.AppName))
	return plan
}

func toSignatures(names []string) []domain.ProcessSignature {
	if len(names) == 0 {
		return nil
	}
	sigs := make([]domain.ProcessSignature, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		sigs = append(sigs, domain.ProcessSignature{Name: n})
	}
	return sigs
}
