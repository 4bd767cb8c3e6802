package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty falls back", "", FallbackBaseName},
		{"spaces become underscores", "Ada Lovelace", "Ada_Lovelace"},
		{"reserved characters stripped", `A/B\C:D*E?F"G<H>I|J`, "ABCDEFGHIJ"},
		{"url escapes decoded", "Ada%20Lovelace", "Ada_Lovelace"},
		{"windows device name suffixed", "CON", "CON_file"},
		{"trailing dots trimmed", "Article...", "Article"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilenameCapsLengthPreservingExtension(t *testing.T) {
	long := strings.Repeat("a", 150) + ".mp3"
	got := SanitizeFilename(long)

	assert.LessOrEqual(t, len(got), 100)
	assert.True(t, strings.HasSuffix(got, ".mp3"))
}

func TestNormalizeForTTS(t *testing.T) {
	input := "  Lead text.\n\n\n\n* bullet one\n== Old Heading ==\nMore text.  "
	got := NormalizeForTTS(input)

	assert.NotContains(t, got, "* bullet")
	assert.NotContains(t, got, "==")
	assert.Contains(t, got, "bullet one")
	assert.Contains(t, got, "Lead text.")
	assert.NotContains(t, got, "\n\n\n")
}

func TestMakeTTSFriendlyHeadings(t *testing.T) {
	md := "# Title\n\nSome [link](https://example.com) and *emphasis* and `code`.\n"

	plain := MakeTTSFriendly(md, "")
	assert.True(t, strings.HasPrefix(plain, "Title.\n"))
	assert.Contains(t, plain, "link and emphasis and code.")
	assert.NotContains(t, plain, "https://example.com")

	prefixed := MakeTTSFriendly(md, "Section:")
	assert.True(t, strings.HasPrefix(prefixed, "Section: Title.\n"))
}

func TestMakeTTSFriendlyEndsWithNewline(t *testing.T) {
	assert.True(t, strings.HasSuffix(MakeTTSFriendly("plain text", ""), "\n"))
}
