package infra

import (
	"os"
	"path/filepath"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// PlatformFamily groups operating systems that share process and filesystem semantics.
type PlatformFamily string

const (
	// FamilyUnix covers linux, darwin and the BSDs
	FamilyUnix PlatformFamily = "unix"
	// FamilyWindows covers windows
	FamilyWindows PlatformFamily = "windows"
)

// PlatformConfig holds the platform-specific choices made once at startup.
type PlatformConfig struct {
	Family          PlatformFamily
	GOOS            string
	DeferredLogPath string // Where the detached removal task logs
	DetachedWorkDir string // Working directory of detached tasks, never inside a target
}

// DetectPlatform determines the platform variant for goos (usually runtime.GOOS).
func DetectPlatform(goos string) *PlatformConfig {
	tmp := os.TempDir()
	family := FamilyUnix
	if goos == "windows" {
		family = FamilyWindows
	}

	return &PlatformConfig{
		Family:          family,
		GOOS:            goos,
		DeferredLogPath: filepath.Join(tmp, "reclaim-deferred.log"),
		DetachedWorkDir: tmp,
	}
}

// String returns a human-readable description of the platform.
func (f PlatformFamily) String() string {
	switch f {
	case FamilyUnix:
		return "unix (rm -rf, setsid)"
	case FamilyWindows:
		return "windows (rd /S /Q, Remove-Item, detached process)"
	default:
		return "unknown"
	}
}

// ForcedStrategies returns the candidate forced-delete commands for this platform, in order.
func (c *PlatformConfig) ForcedStrategies(runner CommandRunner) []domain.ForcedRemovalStrategy {
	if c.Family == FamilyWindows {
		return []domain.ForcedRemovalStrategy{
			NewRdStrategy(runner),
			NewPowerShellStrategy(runner),
		}
	}
	return []domain.ForcedRemovalStrategy{
		NewRmStrategy(runner),
	}
}
