package knowledge

import (
	"regexp"
	"strings"
)

// Scraper output embeds bookkeeping lines and decorative rules that must not
// end up in the index.
var metadataLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^Title:.*$`),
	regexp.MustCompile(`(?m)^URL:.*$`),
	regexp.MustCompile(`(?m)^Crawl Depth:.*$`),
	regexp.MustCompile(`(?m)^Quality Score:.*$`),
	regexp.MustCompile(`(?m)^Method:.*$`),
	regexp.MustCompile(`(?m)^Scraped:.*$`),
	regexp.MustCompile(`(?m)^=+$`),
	regexp.MustCompile(`(?m)^-+$`),
	regexp.MustCompile(`(?m)^_+$`),
	regexp.MustCompile(`(?m)^\*+$`),
}

var (
	newlineRuns    = regexp.MustCompile(`\n+`)
	spaceRuns      = regexp.MustCompile(`[ \t]+`)
	bracketedText  = regexp.MustCompile(`\[.*?\]`)
	copyrightText  = regexp.MustCompile(`©.*?(\s|$)`)
	rightsReserved = regexp.MustCompile(`(?i)All rights reserved.*?(\s|$)`)
)

var unicodeReplacer = strings.NewReplacer(
	" ", " ",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "--",
	"…", "...",
)

// CleanText strips scraper metadata, collapses whitespace, and normalizes
// typographic characters before chunking.
func CleanText(text string) string {
	for _, pattern := range metadataLinePatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	text = newlineRuns.ReplaceAllString(text, " ")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = bracketedText.ReplaceAllString(text, "")
	text = copyrightText.ReplaceAllString(text, "")
	text = rightsReserved.ReplaceAllString(text, "")

	text = unicodeReplacer.Replace(text)

	return strings.TrimSpace(text)
}
