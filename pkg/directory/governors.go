package directory

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// governorEntryPattern matches the "Governor <Name> of <State>" form the
// state directory page uses in its heading links.
var governorEntryPattern = regexp.MustCompile(`^Governor\s+(.+?)\s+of\s+(.+)$`)

// ParseGovernors parses the state governors directory page. Each entry is
// a link or heading of the form "Governor <Name> of <State>".
func ParseGovernors(htmlText string) ([]Officeholder, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parsing governors page: %w", err)
	}

	var governors []Officeholder
	seen := make(map[string]bool)

	doc.Find("a, h2, h3, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		m := governorEntryPattern.FindStringSubmatch(text)
		if m == nil {
			return
		}

		state := strings.TrimSpace(m[2])
		if seen[state] {
			// The page links each governor more than once.
			return
		}
		seen[state] = true

		governors = append(governors, Officeholder{
			Name:  strings.TrimSpace(m[1]),
			State: state,
		})
	})

	return governors, nil
}
