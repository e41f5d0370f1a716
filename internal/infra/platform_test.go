package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		goos   string
		family PlatformFamily
	}{
		{"linux", FamilyUnix},
		{"darwin", FamilyUnix},
		{"freebsd", FamilyUnix},
		{"windows", FamilyWindows},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cfg := DetectPlatform(tt.goos)

			assert.Equal(t, tt.family, cfg.Family)
			assert.Equal(t, tt.goos, cfg.GOOS)
			assert.Equal(t, filepath.Join(os.TempDir(), "reclaim-deferred.log"), cfg.DeferredLogPath)
			assert.Equal(t, os.TempDir(), cfg.DetachedWorkDir)
		})
	}
}

func TestPlatformFamily_String(t *testing.T) {
	assert.Contains(t, FamilyUnix.String(), "rm -rf")
	assert.Contains(t, FamilyWindows.String(), "Remove-Item")
	assert.Equal(t, "unknown", PlatformFamily("plan9").String())
}

func TestForcedStrategies(t *testing.T) {
	runner := newMockCommandRunner()

	unix := DetectPlatform("linux").ForcedStrategies(runner)
	require.Len(t, unix, 1)
	assert.Equal(t, "rm", unix[0].Name())

	windows := DetectPlatform("windows").ForcedStrategies(runner)
	require.Len(t, windows, 2)
	assert.Equal(t, "rd", windows[0].Name())
	assert.Equal(t, "powershell", windows[1].Name())
}
