// Package civics parses the fixed-format civics question document into
// structured question records and reconciles published answer updates
// against them.
package civics

// AnswerType identifies the shape of an answer payload.
type AnswerType string

const (
	// AnswerText is a plain list of acceptable answer choices.
	AnswerText AnswerType = "text"

	// AnswerSenator is an officeholder-by-state payload for the
	// "your state's U.S. senators" question.
	AnswerSenator AnswerType = "senator"

	// AnswerRepresentative is an officeholder-by-state payload for the
	// "your U.S. representative" question.
	AnswerRepresentative AnswerType = "representative"

	// AnswerGovernor is an officeholder-by-state payload for the
	// "governor of your state" question.
	AnswerGovernor AnswerType = "governor"
)

// Answers is the tagged answer payload attached to a question. The parser
// only ever produces plain-text payloads; the by-state shapes come from the
// directory collaborators and are carried through reconciliation unchanged.
type Answers struct {
	Type    AnswerType          `json:"type"`
	Choices []string            `json:"choices,omitempty"`
	ByState map[string][]string `json:"byState,omitempty"`
}

// TextAnswers wraps raw answer strings in a plain-text payload.
// The choice list is never nil, so a question with no answers serializes
// as an empty array rather than null.
func TextAnswers(choices []string) Answers {
	if choices == nil {
		choices = []string{}
	}
	return Answers{Type: AnswerText, Choices: choices}
}

// Theme is a top-level subject grouping (e.g. "AMERICAN GOVERNMENT").
// A document that repeats a theme name produces two separate Theme entries;
// themes are positional, never keyed by name.
type Theme struct {
	Name     string     `json:"name"`
	Sections []*Section `json:"sections"`
}

// Section is a named subdivision within a theme.
type Section struct {
	Name      string            `json:"name"`
	Questions []*ParsedQuestion `json:"questions"`
}

// ParsedQuestion is the parser-internal question record, before the tree is
// flattened. Continuation lines have already been joined into Text.
type ParsedQuestion struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
}

// Question is the flattened, externally visible question record.
type Question struct {
	Theme           string  `json:"theme"`
	Section         string  `json:"section"`
	Question        string  `json:"question"`
	Number          int     `json:"questionNumber"`
	ExpectedAnswers int     `json:"expectedAnswers"`
	Answers         Answers `json:"answers"`
}

// UpdatePartial is a question fragment extracted from the published
// "answer updates" document. It carries no theme or section context; the
// reconciler locates its baseline counterpart by question text.
type UpdatePartial struct {
	Number   int     `json:"questionNumber,omitempty"`
	Question string  `json:"question"`
	Answers  Answers `json:"answers"`
}

// Statistics summarizes a parsed question set.
type Statistics struct {
	Themes    int `json:"themes"`
	Sections  int `json:"sections"`
	Questions int `json:"questions"`
	Answers   int `json:"answers"`
}

// Stats computes summary statistics for a flat question list.
func Stats(questions []Question) Statistics {
	stats := Statistics{Questions: len(questions)}

	lastTheme := ""
	lastSection := ""
	for i, q := range questions {
		if i == 0 || q.Theme != lastTheme {
			stats.Themes++
			lastTheme = q.Theme
			lastSection = ""
		}
		if q.Section != lastSection {
			stats.Sections++
			lastSection = q.Section
		}
		stats.Answers += len(q.Answers.Choices)
	}

	return stats
}
