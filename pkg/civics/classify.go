package civics

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// LineKind is the classification of a single trimmed input line.
type LineKind int

const (
	// LineEmpty is a line that is blank after trimming.
	LineEmpty LineKind = iota
	// LineTheme is an all-uppercase theme heading.
	LineTheme
	// LineSection is a "A: Section Name" section heading.
	LineSection
	// LineQuestion is a "12. Question text" numbered question.
	LineQuestion
	// LineAnswer is a bullet- or period-prefixed answer.
	LineAnswer
	// LineOther is continuation or explanatory prose.
	LineOther
)

// String returns the string representation of a LineKind.
func (k LineKind) String() string {
	switch k {
	case LineEmpty:
		return "EMPTY"
	case LineTheme:
		return "THEME"
	case LineSection:
		return "SECTION"
	case LineQuestion:
		return "QUESTION"
	case LineAnswer:
		return "ANSWER"
	case LineOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON implements json.Marshaler for LineKind.
func (k LineKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Line is a classified input line. Text holds the payload for the kind:
// the theme or section name, the question or answer text, or the trimmed
// line itself for LineOther. Number is set only for LineQuestion.
type Line struct {
	Kind   LineKind
	Text   string
	Number int
}

var (
	sectionPattern      = regexp.MustCompile(`^([A-Z]):\s+(.+)$`)
	questionPattern     = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)
	leadingNumberPeriod = regexp.MustCompile(`^\d+\.`)
)

// answerPrefixes are the two bullet markers answer lines carry in the
// extracted document text.
var answerPrefixes = []string{". ", "• "}

// Classify categorizes one line of document text. Classification is total:
// anything that matches no structural rule falls through to LineOther.
//
// Rule order is load-bearing. Answer bullets are checked before the theme
// rule because an answer consisting entirely of digits or uppercase text
// ("1787", ". AMERICA") would otherwise classify as a theme heading.
func Classify(line string) Line {
	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		return Line{Kind: LineEmpty}
	}

	for _, prefix := range answerPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return Line{Kind: LineAnswer, Text: strings.TrimSpace(trimmed[len(prefix):])}
		}
	}

	if isUppercase(trimmed) && !strings.HasPrefix(trimmed, ".") && !leadingNumberPeriod.MatchString(trimmed) {
		return Line{Kind: LineTheme, Text: trimmed}
	}

	if m := sectionPattern.FindStringSubmatch(trimmed); m != nil {
		return Line{Kind: LineSection, Text: strings.TrimSpace(m[2])}
	}

	if m := questionPattern.FindStringSubmatch(trimmed); m != nil {
		number, _ := strconv.Atoi(m[1])
		return Line{Kind: LineQuestion, Text: strings.TrimSpace(m[2]), Number: number}
	}

	return Line{Kind: LineOther, Text: trimmed}
}

// isUppercase reports whether the line contains no lowercase letters,
// i.e. the entire line is already in uppercase form.
func isUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
	}
	return true
}
