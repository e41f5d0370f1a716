package infra

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

const (
	// TombstoneMarker separates the original base name from the uniqueness suffix.
	TombstoneMarker = ".reclaim-"

	tombstoneTimeLayout = "20060102T150405"
)

// TombstoneNamerImpl implements domain.TombstoneNamer.
// Names look like: release.reclaim-20261014T093000-a1b2c3
type TombstoneNamerImpl struct {
	now func() time.Time
}

// NewTombstoneNamer creates a namer using the wall clock.
func NewTombstoneNamer() domain.TombstoneNamer {
	return &TombstoneNamerImpl{now: time.Now}
}

// NewTombstoneNamerWithClock creates a namer with a fixed clock (for testing).
func NewTombstoneNamerWithClock(now func() time.Time) *TombstoneNamerImpl {
	return &TombstoneNamerImpl{now: now}
}

// Name returns a sibling of path with a timestamp and random suffix.
func (n *TombstoneNamerImpl) Name(path string) string {
	clean := filepath.Clean(path)
	base := filepath.Base(clean) + TombstoneMarker +
		n.now().UTC().Format(tombstoneTimeLayout) + "-" + generateRandomHex(6)
	return filepath.Join(filepath.Dir(clean), base)
}

// Pattern returns a glob matching every tombstone of path.
func (n *TombstoneNamerImpl) Pattern(path string) string {
	clean := filepath.Clean(path)
	return filepath.Join(filepath.Dir(clean), escapeGlob(filepath.Base(clean))+TombstoneMarker+"*")
}

// escapeGlob neutralises glob metacharacters with character classes,
// which works with both slash and backslash separators.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// generateRandomHex generates a random hex string of specified length.
func generateRandomHex(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return strings.Repeat("0", length)
	}
	return hex.EncodeToString(bytes)[:length]
}

// Ensure TombstoneNamerImpl implements domain.TombstoneNamer.
var _ domain.TombstoneNamer = (*TombstoneNamerImpl)(nil)
