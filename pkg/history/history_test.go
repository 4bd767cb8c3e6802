package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)

	run, err := store.Record(Run{Title: "Ada Lovelace", Format: "mp3"})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestRecentNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"First", "Second", "Third"} {
		_, err := store.Record(Run{Title: title, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)

	require.Len(t, runs, 2)
	assert.Equal(t, "Third", runs[0].Title)
	assert.Equal(t, "Second", runs[1].Title)
}

func TestRecordRoundTripsFields(t *testing.T) {
	store := newTestStore(t)

	in := Run{
		Title:           "Ada Lovelace",
		URL:             "https://en.wikipedia.org/wiki/Ada_Lovelace",
		MarkdownPath:    "/out/Ada_Lovelace.md",
		AudioPath:       "/out/Ada_Lovelace.m4b",
		Format:          "m4b",
		DurationSeconds: 1234.5,
	}
	_, err := store.Record(in)
	require.NoError(t, err)

	runs, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.URL, got.URL)
	assert.Equal(t, in.AudioPath, got.AudioPath)
	assert.Equal(t, in.Format, got.Format)
	assert.InDelta(t, in.DurationSeconds, got.DurationSeconds, 0.001)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Record(Run{Title: "Gone"})
	require.NoError(t, err)
	require.NoError(t, store.Clear())

	runs, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
