package tts

import (
	"fmt"
	"io"
	"strings"
)

// ChapterMark is one entry of the container's chapter table. Offsets
// are milliseconds from the start of the narration; marks are
// contiguous, so Start of entry i equals End of entry i-1.
type ChapterMark struct {
	Title       string
	StartMillis int64
	EndMillis   int64
}

// buildChapterMarks accumulates measured segment durations into
// contiguous chapter offsets. Seconds are converted to milliseconds by
// truncation, matching the container tooling's integer timebase.
func buildChapterMarks(titles []string, durations []float64) []ChapterMark {
	marks := make([]ChapterMark, 0, len(titles))
	var cursor int64
	for i, title := range titles {
		durMillis := int64(durations[i] * 1000)
		marks = append(marks, ChapterMark{
			Title:       title,
			StartMillis: cursor,
			EndMillis:   cursor + durMillis,
		})
		cursor += durMillis
	}
	return marks
}

// writeConcatList emits an ffmpeg concat-demuxer input list, one
// segment file per line in chapter order.
func writeConcatList(w io.Writer, files []string) error {
	for _, f := range files {
		escaped := strings.ReplaceAll(f, "'", `'\''`)
		if _, err := fmt.Fprintf(w, "file '%s'\n", escaped); err != nil {
			return err
		}
	}
	return nil
}

// writeFFMetadata emits an FFMETADATA1 document carrying global tags
// and the chapter table with a 1/1000 timebase.
func writeFFMetadata(w io.Writer, meta Metadata, marks []ChapterMark) error {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	writeTag(&b, "title", meta.Title)
	writeTag(&b, "artist", meta.Artist)
	writeTag(&b, "album", meta.Album)
	writeTag(&b, "genre", meta.Genre)
	writeTag(&b, "date", meta.Date)

	for _, mark := range marks {
		b.WriteString("\n[CHAPTER]\nTIMEBASE=1/1000\n")
		fmt.Fprintf(&b, "START=%d\n", mark.StartMillis)
		fmt.Fprintf(&b, "END=%d\n", mark.EndMillis)
		fmt.Fprintf(&b, "title=%s\n", escapeFFMetadata(mark.Title))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTag(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s=%s\n", key, escapeFFMetadata(value))
}

// escapeFFMetadata escapes the characters the FFMETADATA format treats
// specially: '=', ';', '#', '\' and newline.
func escapeFFMetadata(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"=", `\=`,
		";", `\;`,
		"#", `\#`,
		"\n", `\`+"\n",
	)
	return r.Replace(s)
}
