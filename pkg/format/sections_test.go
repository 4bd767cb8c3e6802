package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMarkdownSectionsNoHeadings(t *testing.T) {
	sections := SplitMarkdownSections("Just some text.\n\nAnother paragraph.\n")

	require.Len(t, sections, 1)
	assert.Equal(t, IntroductionTitle, sections[0].Title)
	assert.Equal(t, "Just some text.\n\nAnother paragraph.", sections[0].Body)
}

func TestSplitMarkdownSectionsEmptyInput(t *testing.T) {
	sections := SplitMarkdownSections("")

	require.Len(t, sections, 1)
	assert.Equal(t, IntroductionTitle, sections[0].Title)
	assert.Empty(t, sections[0].Body)
}

func TestSplitMarkdownSectionsWithLeadingContent(t *testing.T) {
	md := "Intro paragraph.\n\n# History\n\nOld stuff.\n\n## Modern era\n\nNew stuff.\n"
	sections := SplitMarkdownSections(md)

	require.Len(t, sections, 3)
	assert.Equal(t, IntroductionTitle, sections[0].Title)
	assert.Equal(t, "Intro paragraph.", sections[0].Body)
	assert.Equal(t, "History", sections[1].Title)
	assert.Equal(t, "Old stuff.", sections[1].Body)
	assert.Equal(t, "Modern era", sections[2].Title)
	assert.Equal(t, "New stuff.", sections[2].Body)
}

func TestSplitMarkdownSectionsHeadingFirst(t *testing.T) {
	sections := SplitMarkdownSections("# Only\n\nBody.\n")

	require.Len(t, sections, 1)
	assert.Equal(t, "Only", sections[0].Title)
	assert.Equal(t, "Body.", sections[0].Body)
}

func TestSplitMarkdownSectionsTrailingBareHeading(t *testing.T) {
	sections := SplitMarkdownSections("Intro.\n# See also")

	require.Len(t, sections, 2)
	assert.Equal(t, "See also", sections[1].Title)
	assert.Empty(t, sections[1].Body)
}

func TestSplitWikitextSections(t *testing.T) {
	text := "Lead text.\n== History ==\nOld.\n=== Detail ===\nFine grained.\n"
	sections := SplitWikitextSections(text)

	require.Len(t, sections, 3)
	assert.Equal(t, IntroductionTitle, sections[0].Title)
	assert.Equal(t, "Lead text.", sections[0].Body)
	assert.Equal(t, "History", sections[1].Title)
	assert.Equal(t, "Old.", sections[1].Body)
	assert.Equal(t, "Detail", sections[2].Title)
	assert.Equal(t, "Fine grained.", sections[2].Body)
}

func TestSplitWikitextSectionsMatchesMarkdownShape(t *testing.T) {
	wiki := SplitWikitextSections("Lead.\n== A ==\nBody A.")
	md := SplitMarkdownSections("Lead.\n# A\nBody A.")

	require.Equal(t, len(md), len(wiki))
	for i := range md {
		assert.Equal(t, md[i].Title, wiki[i].Title)
		assert.Equal(t, md[i].Body, wiki[i].Body)
	}
}

func TestBuildTTSSectionsDropsNothingWithHeadings(t *testing.T) {
	sections := BuildTTSSections("Lead.\n\n# A\n\nBody A.\n")

	require.Len(t, sections, 2)
	assert.Equal(t, "# Introduction\n\nLead.", sections[0].Body)
	assert.Equal(t, "# A\n\nBody A.", sections[1].Body)
}

func TestConvertWikitextHeaders(t *testing.T) {
	got := ConvertWikitextHeaders("== History ==\ntext\n=== Detail ===\n")
	assert.Contains(t, got, "## History")
	assert.Contains(t, got, "### Detail")
}
