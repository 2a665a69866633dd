package directory

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// districtSuffixPattern strips the "- District" suffix some table captions
// carry after the state name.
var districtSuffixPattern = regexp.MustCompile(`\s+-\s+.*$`)

// ParseRepresentatives parses the House representatives directory page.
// The page groups members into one table per state; each row carries the
// district, the member name, and the party.
func ParseRepresentatives(htmlText string) ([]Officeholder, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parsing representatives page: %w", err)
	}

	var representatives []Officeholder

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		state := strings.TrimSpace(table.Find("caption").First().Text())
		if state == "" {
			return
		}
		state = districtSuffixPattern.ReplaceAllString(state, "")

		table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}

			district := strings.TrimSpace(cells.Eq(0).Text())
			name := cleanName(cells.Eq(1).Text())
			if name == "" {
				return
			}

			holder := Officeholder{
				Name:     name,
				State:    state,
				District: district,
			}
			if cells.Length() >= 3 {
				holder.Party = strings.TrimSpace(cells.Eq(2).Text())
			}
			representatives = append(representatives, holder)
		})
	})

	return representatives, nil
}
