// Package format turns raw article text into speech-friendly output and
// filesystem-safe names.
package format

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/flytam/filenamify"
)

const (
	// FallbackBaseName is used when sanitization leaves nothing usable.
	FallbackBaseName = "wikipedia_article"

	maxBaseNameLen = 100
)

var (
	controlCharsRe  = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	blankRunsRe     = regexp.MustCompile(`\n\s*\n+`)
	listMarkerRe    = regexp.MustCompile(`(?m)^\s*\*\s+`)
	wikiHeadingRe   = regexp.MustCompile(`(?m)^==+\s*(.*?)\s*==+\s*$`)
	inlineLinkRe    = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	emphasisRe      = regexp.MustCompile(`[*_]{1,3}(.+?)[*_]{1,3}`)
	inlineCodeRe    = regexp.MustCompile("`(.+?)`")
	headingMarkerRe = regexp.MustCompile(`^\s*#+\s*`)

	windowsReserved = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
		"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
		"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

// SanitizeFilename converts an arbitrary page title into a safe base
// filename: URL-escapes decoded, control and reserved characters
// stripped, whitespace collapsed to underscores, Windows device names
// suffixed, and the result capped at 100 characters while keeping a
// short trailing extension intact.
func SanitizeFilename(name string) string {
	if name == "" {
		return FallbackBaseName
	}

	if decoded, err := url.QueryUnescape(name); err == nil {
		name = decoded
	}

	name = controlCharsRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, "_")

	safe, err := filenamify.Filenamify(name, filenamify.Options{Replacement: ""})
	if err == nil {
		name = safe
	}
	name = strings.Trim(name, " .")

	if name == "" {
		return FallbackBaseName
	}

	if _, reserved := windowsReserved[strings.ToUpper(name)]; reserved {
		name += "_file"
	}

	if len(name) > maxBaseNameLen {
		name = capLength(name, maxBaseNameLen)
	}
	return name
}

// capLength shortens name to maxLen, preserving a short (<10 char)
// trailing extension when one is present.
func capLength(name string, maxLen int) string {
	if dot := strings.LastIndex(name, "."); dot > 0 {
		ext := name[dot+1:]
		if len(ext) > 0 && len(ext) < 10 {
			keep := maxLen - (len(ext) + 1)
			return strings.TrimRight(name[:keep], "_") + "." + ext
		}
	}
	return strings.TrimRight(name[:maxLen], "_")
}

// NormalizeForTTS cleans extracted article text for narration: collapses
// blank-line runs, drops list markers and leftover wiki headings.
func NormalizeForTTS(text string) string {
	if text == "" {
		return ""
	}

	text = strings.TrimSpace(text)
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = listMarkerRe.ReplaceAllString(text, "")
	text = wikiHeadingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// MakeTTSFriendly renders markdown as plain spoken text. Headings
// become standalone sentences, optionally prefixed (e.g. "Section:"),
// and inline markup (links, emphasis, code spans) is unwrapped.
func MakeTTSFriendly(markdown string, headingPrefix string) string {
	var out []string
	for _, line := range strings.Split(markdown, "\n") {
		if m := markdownHeadingRe.FindStringSubmatch(line); m != nil {
			title := strings.TrimSpace(m[1])
			if headingPrefix != "" {
				out = append(out, headingPrefix+" "+title+".")
			} else {
				out = append(out, title+".")
			}
			continue
		}

		line = inlineLinkRe.ReplaceAllString(line, "$1")
		line = emphasisRe.ReplaceAllString(line, "$1")
		line = inlineCodeRe.ReplaceAllString(line, "$1")
		line = headingMarkerRe.ReplaceAllString(line, "")
		out = append(out, line)
	}

	text := strings.Join(out, "\n")
	return strings.TrimSpace(blankRunsRe.ReplaceAllString(text, "\n\n")) + "\n"
}
