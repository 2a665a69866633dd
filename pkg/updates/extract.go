// Package updates extracts per-question answer updates from the published
// "civics test updates" HTML page. The page lists each changed question with
// its current answers; the extractor turns those blocks into update partials
// for reconciliation against the baseline question set.
package updates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/civicstudy/civica/pkg/civics"
)

// questionHeadingPattern matches the "28. Question text" headings the
// updates page uses for each changed question.
var questionHeadingPattern = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

// Extract parses the updates page HTML and returns one partial per question
// block, in page order. A question heading opens a block; every list item
// until the next heading is one answer choice.
//
// Extract does not validate field presence beyond what the page structure
// gives it: a block with no list items produces a partial with an empty
// payload, which reconciliation rejects as an extractor-contract violation.
func Extract(htmlText string) ([]civics.UpdatePartial, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parsing updates page: %w", err)
	}

	var partials []civics.UpdatePartial
	var current *civics.UpdatePartial

	flush := func() {
		if current == nil {
			return
		}
		current.Answers = civics.TextAnswers(current.Answers.Choices)
		partials = append(partials, *current)
		current = nil
	}

	doc.Find("h2, h3, h4, p, li").Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if text == "" {
			return
		}

		if m := questionHeadingPattern.FindStringSubmatch(text); m != nil && goquery.NodeName(sel) != "li" {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = &civics.UpdatePartial{
				Number:   number,
				Question: strings.TrimSpace(m[2]),
			}
			return
		}

		if goquery.NodeName(sel) == "li" && current != nil {
			current.Answers.Choices = append(current.Answers.Choices, text)
		}
	})
	flush()

	return partials, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// collapseWhitespace trims a text node and folds internal whitespace runs,
// including the newlines goquery preserves from the page markup, into
// single spaces.
func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}
