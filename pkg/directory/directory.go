// Package directory parses the published legislator and governor
// directories (the Senate XML member feed, the House representatives page,
// and the state governors page) into officeholder records, and builds the
// by-state answer payloads the variable civics questions carry.
package directory

import (
	"sort"
	"strings"

	"github.com/civicstudy/civica/pkg/civics"
)

// Officeholder is a single current officeholder from one of the
// government directories.
type Officeholder struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Party    string `json:"party,omitempty"`
	District string `json:"district,omitempty"`
}

// ByState groups officeholder names by state, preserving directory order
// within each state.
func ByState(officeholders []Officeholder) map[string][]string {
	grouped := make(map[string][]string)
	for _, holder := range officeholders {
		grouped[holder.State] = append(grouped[holder.State], holder.Name)
	}
	return grouped
}

// Payload wraps officeholders in a by-state answer payload of the given
// type, ready to attach to the matching variable question.
func Payload(answerType civics.AnswerType, officeholders []Officeholder) civics.Answers {
	return civics.Answers{Type: answerType, ByState: ByState(officeholders)}
}

// States returns the sorted list of states present in the directory,
// useful for coverage checks against the expected state set.
func States(officeholders []Officeholder) []string {
	seen := make(map[string]bool)
	for _, holder := range officeholders {
		seen[holder.State] = true
	}

	states := make([]string, 0, len(seen))
	for state := range seen {
		states = append(states, state)
	}
	sort.Strings(states)
	return states
}

// cleanName trims a directory name cell and collapses the "Last, First"
// form some directories use into "First Last".
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if comma := strings.Index(name, ","); comma >= 0 {
		last := strings.TrimSpace(name[:comma])
		first := strings.TrimSpace(name[comma+1:])
		if last != "" && first != "" {
			return first + " " + last
		}
	}
	return name
}
