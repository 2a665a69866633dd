package civics

import (
	"regexp"
	"strings"
)

var (
	// footerMarkerPattern matches page-number footer noise left behind by
	// text extraction, e.g. "7 of 31 uscis.gov/citizenship", optionally
	// preceded by a comma when the marker was glued onto a sentence.
	// Horizontal whitespace only: eating newlines would merge the
	// surrounding lines.
	footerMarkerPattern = regexp.MustCompile(`,?[ \t]*\d+ of \d+[ \t]*uscis\.gov/citizenship`)

	// trailingAsteriskPattern matches the footnote marker some questions
	// carry on the updates page but not in the baseline document.
	trailingAsteriskPattern = regexp.MustCompile(`\s*\*$`)
)

// curlyQuoteReplacer maps both curly apostrophe variants to the straight
// apostrophe used in the baseline document.
var curlyQuoteReplacer = strings.NewReplacer("‘", "'", "’", "'")

// Clean removes footer/page-marker noise from extracted document text,
// wherever it appears. All other content, including whitespace inside
// surviving lines, is left untouched. Clean is idempotent.
func Clean(raw string) string {
	// Removing a marker can splice the surrounding text into a new
	// marker, so a single replacement pass is not enough. Repeat until
	// a fixed point.
	for {
		cleaned := footerMarkerPattern.ReplaceAllString(raw, "")
		if cleaned == raw {
			return cleaned
		}
		raw = cleaned
	}
}

// NormalizeForMatching reduces question text to a comparison key for
// reconciliation: trailing asterisk stripped, curly quotes mapped to a
// straight apostrophe, surrounding whitespace trimmed, lower-cased.
func NormalizeForMatching(text string) string {
	key := trailingAsteriskPattern.ReplaceAllString(text, "")
	key = curlyQuoteReplacer.Replace(key)
	return strings.ToLower(strings.TrimSpace(key))
}
