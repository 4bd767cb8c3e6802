package tts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChapterMarksRoundTrip(t *testing.T) {
	marks := buildChapterMarks([]string{"Introduction", "History"}, []float64{10.0, 5.0})

	require.Len(t, marks, 2)
	assert.Equal(t, ChapterMark{Title: "Introduction", StartMillis: 0, EndMillis: 10000}, marks[0])
	assert.Equal(t, ChapterMark{Title: "History", StartMillis: 10000, EndMillis: 15000}, marks[1])
}

func TestBuildChapterMarksContiguous(t *testing.T) {
	durations := []float64{1.9995, 3.0004, 0.5009, 12.25}
	titles := []string{"a", "b", "c", "d"}

	marks := buildChapterMarks(titles, durations)
	require.Len(t, marks, 4)

	assert.Equal(t, int64(0), marks[0].StartMillis)
	for i := 1; i < len(marks); i++ {
		assert.Equal(t, marks[i-1].EndMillis, marks[i].StartMillis)
		assert.GreaterOrEqual(t, marks[i].EndMillis, marks[i].StartMillis)
	}
}

func TestBuildChapterMarksTruncatesMillis(t *testing.T) {
	marks := buildChapterMarks([]string{"a"}, []float64{1.9999})
	assert.Equal(t, int64(1999), marks[0].EndMillis)
}

func TestWriteConcatList(t *testing.T) {
	var b strings.Builder
	err := writeConcatList(&b, []string{"/tmp/a.mp3", "/tmp/it's.mp3"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "file '/tmp/a.mp3'", lines[0])
	assert.Equal(t, `file '/tmp/it'\''s.mp3'`, lines[1])
}

func TestWriteFFMetadata(t *testing.T) {
	var b strings.Builder
	meta := Metadata{Title: "Ada Lovelace", Artist: "wikibee"}
	marks := []ChapterMark{
		{Title: "Introduction", StartMillis: 0, EndMillis: 10000},
		{Title: "Legacy; notes", StartMillis: 10000, EndMillis: 15000},
	}

	require.NoError(t, writeFFMetadata(&b, meta, marks))
	got := b.String()

	assert.True(t, strings.HasPrefix(got, ";FFMETADATA1\n"))
	assert.Contains(t, got, "title=Ada Lovelace\n")
	assert.Contains(t, got, "artist=wikibee\n")
	assert.Equal(t, 2, strings.Count(got, "[CHAPTER]"))
	assert.Contains(t, got, "TIMEBASE=1/1000")
	assert.Contains(t, got, "START=10000")
	assert.Contains(t, got, "END=15000")
	assert.Contains(t, got, `title=Legacy\; notes`)
}
