package infra

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTombstoneNamer_Name(t *testing.T) {
	n := NewTombstoneNamerWithClock(func() time.Time { return fixedTime })
	path := filepath.Join("/w", "app", "release")

	name := n.Name(path)

	assert.Equal(t, filepath.Dir(path), filepath.Dir(name), "tombstone must be a sibling")
	assert.Regexp(t, regexp.MustCompile(`^release\.reclaim-20261014T093000-[0-9a-f]{6}$`), filepath.Base(name))
}

func TestTombstoneNamer_Unique(t *testing.T) {
	n := NewTombstoneNamerWithClock(func() time.Time { return fixedTime })
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		name := n.Name("/w/release")
		assert.False(t, seen[name], "duplicate tombstone %s", name)
		seen[name] = true
	}
}

func TestTombstoneNamer_TrailingSeparator(t *testing.T) {
	n := NewTombstoneNamer()

	name := n.Name(filepath.FromSlash("/w/dist/"))

	assert.True(t, strings.HasPrefix(filepath.Base(name), "dist"+TombstoneMarker))
}

func TestTombstoneNamer_PatternMatchesName(t *testing.T) {
	n := NewTombstoneNamer()
	path := filepath.Join("/w", "dist-electron")

	matched, err := filepath.Match(n.Pattern(path), n.Name(path))

	assert.NoError(t, err)
	assert.True(t, matched)
}

func TestTombstoneNamer_PatternEscapesGlob(t *testing.T) {
	n := NewTombstoneNamer()
	path := filepath.Join("/w", "out[1]")

	pattern := n.Pattern(path)

	matched, _ := filepath.Match(pattern, n.Name(path))
	assert.True(t, matched)
	other, _ := filepath.Match(pattern, filepath.Join("/w", "out1"+TombstoneMarker+"x"))
	assert.False(t, other)
}

func TestGenerateRandomHex(t *testing.T) {
	for _, n := range []int{1, 6, 9} {
		assert.Len(t, generateRandomHex(n), n)
	}
}
