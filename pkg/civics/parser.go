package civics

import "strings"

// Parse cleans raw document text, classifies it line by line, folds the
// classified stream into a Theme -> Section -> Question -> Answer tree, and
// returns the flattened question list in source order.
//
// Parsing never fails on malformed structure: themes without sections,
// sections without questions, and questions without answers all simply
// produce empty collections, and stray prose between structural elements is
// ignored. Empty input yields an empty list. The same input always produces
// the same output.
func Parse(raw string) []Question {
	return Flatten(ParseTree(raw))
}

// ParseTree parses raw document text into the nested theme tree without
// flattening, exposing the intermediate structure for inspection.
func ParseTree(raw string) []*Theme {
	rawLines := strings.Split(Clean(raw), "\n")
	lines := make([]Line, len(rawLines))
	for i, rawLine := range rawLines {
		lines[i] = Classify(rawLine)
	}

	cur := &cursor{lines: lines}
	return parseThemes(cur)
}

// Flatten converts the theme tree into the flat, externally visible question
// list, computing the expected-answer count for every question and wrapping
// its answers in a plain-text payload.
func Flatten(themes []*Theme) []Question {
	questions := []Question{}
	for _, theme := range themes {
		for _, section := range theme.Sections {
			for _, parsed := range section.Questions {
				questions = append(questions, Question{
					Theme:           theme.Name,
					Section:         section.Name,
					Question:        parsed.Text,
					Number:          parsed.Number,
					ExpectedAnswers: DetectExpectedAnswers(parsed.Text),
					Answers:         TextAnswers(parsed.Answers),
				})
			}
		}
	}
	return questions
}

// cursor is an index over the classified line slice. Threading an explicit
// cursor through the reduction levels keeps the "remaining lines" state
// testable per level and avoids recursion depth concerns on large inputs.
type cursor struct {
	lines []Line
	pos   int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.lines)
}

func (c *cursor) peek() Line {
	return c.lines[c.pos]
}

func (c *cursor) advance() {
	c.pos++
}

// skipNoise discards empty and prose lines when hunting for the next
// structural element. It is not used while accumulating question
// continuations, where Other lines are meaningful.
func (c *cursor) skipNoise() {
	for !c.done() {
		kind := c.peek().Kind
		if kind != LineEmpty && kind != LineOther {
			return
		}
		c.advance()
	}
}

// parseThemes repeatedly opens a theme on each theme heading and hands the
// remainder to section-level parsing. Any other structural line stops the
// top level; a document with no theme heading produces no themes at all.
func parseThemes(cur *cursor) []*Theme {
	var themes []*Theme
	for {
		cur.skipNoise()
		if cur.done() || cur.peek().Kind != LineTheme {
			return themes
		}

		theme := &Theme{Name: cur.peek().Text, Sections: []*Section{}}
		cur.advance()
		theme.Sections = parseSections(cur)
		themes = append(themes, theme)
	}
}

// parseSections opens a section on each section heading. Any other
// classification, including the next theme heading, returns control upward.
func parseSections(cur *cursor) []*Section {
	sections := []*Section{}
	for {
		cur.skipNoise()
		if cur.done() || cur.peek().Kind != LineSection {
			return sections
		}

		section := &Section{Name: cur.peek().Text, Questions: []*ParsedQuestion{}}
		cur.advance()
		section.Questions = parseQuestions(cur)
		sections = append(sections, section)
	}
}

// parseQuestions opens a question on each numbered question line, joins any
// immediately following prose lines onto the question text as continuations,
// then collects the answer bullets that follow.
func parseQuestions(cur *cursor) []*ParsedQuestion {
	questions := []*ParsedQuestion{}
	for {
		cur.skipNoise()
		if cur.done() || cur.peek().Kind != LineQuestion {
			return questions
		}

		line := cur.peek()
		question := &ParsedQuestion{Number: line.Number, Text: line.Text}
		cur.advance()

		// Multi-line question text: consume Other lines greedily, without
		// noise skipping, joining each with a single space. The first line
		// that is not prose ends the continuation.
		for !cur.done() && cur.peek().Kind == LineOther {
			question.Text = question.Text + " " + cur.peek().Text
			cur.advance()
		}

		question.Answers = parseAnswers(cur)
		questions = append(questions, question)
	}
}

// parseAnswers collects consecutive answer bullets. The first non-answer
// structural line ends the question; a question followed immediately by the
// next structural marker keeps an empty answer list.
func parseAnswers(cur *cursor) []string {
	answers := []string{}
	for {
		cur.skipNoise()
		if cur.done() || cur.peek().Kind != LineAnswer {
			return answers
		}
		answers = append(answers, cur.peek().Text)
		cur.advance()
	}
}
