package ledger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed.csv")
	l, err := NewCSVLedger(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return l, path
}

func TestCSVLedger_MarkAndCheck(t *testing.T) {
	l, _ := newTestLedger(t)

	assert.False(t, l.IsProcessed("user-1", "Ensayo M1"))

	require.NoError(t, l.MarkProcessed("user-1", "Ensayo M1"))
	assert.True(t, l.IsProcessed("user-1", "Ensayo M1"))
	assert.Equal(t, 1, l.Count())

	// Same user, different assessment is a distinct entry.
	assert.False(t, l.IsProcessed("user-1", "Ensayo CL"))
}

func TestCSVLedger_MarkIsIdempotent(t *testing.T) {
	l, path := newTestLedger(t)

	require.NoError(t, l.MarkProcessed("user-1", "Ensayo M1"))
	require.NoError(t, l.MarkProcessed("user-1", "Ensayo M1"))
	assert.Equal(t, 1, l.Count())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "user-1"))
}

func TestCSVLedger_SurvivesReload(t *testing.T) {
	l, path := newTestLedger(t)
	require.NoError(t, l.MarkProcessed("user-1", "Ensayo M1"))
	require.NoError(t, l.MarkProcessed("user-2", "Ensayo M1"))

	reloaded, err := NewCSVLedger(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	assert.True(t, reloaded.IsProcessed("user-1", "Ensayo M1"))
	assert.True(t, reloaded.IsProcessed("user-2", "Ensayo M1"))
	assert.Equal(t, 2, reloaded.Count())
}

func TestCSVLedger_CreatesFileWithHeader(t *testing.T) {
	_, path := newTestLedger(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "user_id,assessment_title"))
}

func TestCSVLedger_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "processed.csv")
	l, err := NewCSVLedger(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, l.MarkProcessed("user-1", "Ensayo M1"))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
