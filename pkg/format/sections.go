package format

import (
	"regexp"
	"strings"
)

// Section is one titled unit of narration text in reading order.
// Content before the first heading gets the "Introduction" title.
type Section struct {
	Title string
	Body  string
}

// IntroductionTitle names the synthetic leading section.
const IntroductionTitle = "Introduction"

var (
	markdownHeadingRe = regexp.MustCompile(`^\s*#+\s*(.+?)\s*$`)
	wikitextHeadingRe = regexp.MustCompile(`^\s*={2,}\s*(.+?)\s*={2,}\s*$`)
	wikitextHeaderRe  = regexp.MustCompile(`(?m)^(={2,})\s*(.+?)\s*={2,}\s*$`)
)

// SplitMarkdownSections splits markdown into sections at "#" style
// headings. The result is never empty: a document without headings
// becomes a single "Introduction" section holding the whole text.
func SplitMarkdownSections(markdown string) []Section {
	return splitSections(markdown, markdownHeadingRe, true)
}

// SplitWikitextSections splits raw wiki markup into sections at
// "== Title ==" style headings. Output shape is identical to
// SplitMarkdownSections so consumers stay format-agnostic.
func SplitWikitextSections(text string) []Section {
	return splitSections(text, wikitextHeadingRe, false)
}

// keepTrailingEmpty keeps a final section opened by a heading with no
// body, so a document ending in a bare heading still yields a section
// per heading.
func splitSections(text string, headingRe *regexp.Regexp, keepTrailingEmpty bool) []Section {
	var sections []Section
	title := IntroductionTitle
	var body []string

	for _, line := range strings.Split(text, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			if len(body) > 0 {
				sections = append(sections, Section{Title: title, Body: trimJoined(body)})
				body = body[:0]
			}
			if heading := strings.TrimSpace(m[1]); heading != "" {
				title = heading
			}
			continue
		}
		body = append(body, line)
	}

	if keepTrailingEmpty || len(body) > 0 || len(sections) == 0 {
		sections = append(sections, Section{Title: title, Body: trimJoined(body)})
	}
	return sections
}

func trimJoined(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// BuildTTSSections renders each section back to a small markdown
// document carrying its heading, dropping sections whose rendered text
// is empty.
func BuildTTSSections(markdown string) []Section {
	var out []Section
	for _, s := range SplitMarkdownSections(markdown) {
		content := "# " + s.Title
		if s.Body != "" {
			content += "\n\n" + s.Body
		}
		if content = strings.TrimSpace(content); content != "" {
			out = append(out, Section{Title: s.Title, Body: content})
		}
	}
	return out
}

// ConvertWikitextHeaders rewrites "== Title ==" headers as markdown
// "## Title" headers, preserving the nesting level.
func ConvertWikitextHeaders(text string) string {
	return wikitextHeaderRe.ReplaceAllStringFunc(text, func(line string) string {
		m := wikitextHeaderRe.FindStringSubmatch(line)
		return strings.Repeat("#", len(m[1])) + " " + strings.TrimSpace(m[2])
	})
}
