package directory

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// senateFeed mirrors the structure of the Senate contact-information XML
// feed. Only the fields the directory needs are mapped.
type senateFeed struct {
	XMLName xml.Name       `xml:"contact_information"`
	Members []senateMember `xml:"member"`
}

type senateMember struct {
	FirstName string `xml:"first_name"`
	LastName  string `xml:"last_name"`
	State     string `xml:"state"`
	Party     string `xml:"party"`
}

// ParseSenators parses the Senate member XML feed into officeholder
// records, two per state, in feed order.
func ParseSenators(xmlText string) ([]Officeholder, error) {
	var feed senateFeed
	if err := xml.Unmarshal([]byte(xmlText), &feed); err != nil {
		return nil, fmt.Errorf("parsing senator feed: %w", err)
	}

	senators := make([]Officeholder, 0, len(feed.Members))
	for _, member := range feed.Members {
		name := strings.TrimSpace(strings.TrimSpace(member.FirstName) + " " + strings.TrimSpace(member.LastName))
		state := strings.TrimSpace(member.State)
		if name == "" || state == "" {
			// Placeholder entries appear in the feed around vacancies.
			continue
		}
		senators = append(senators, Officeholder{
			Name:  name,
			State: state,
			Party: strings.TrimSpace(member.Party),
		})
	}

	return senators, nil
}
