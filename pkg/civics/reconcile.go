package civics

import (
	"errors"
	"fmt"
)

// ErrInvalidPartial reports an update partial that is missing its question
// text or its answer payload. This is an upstream extractor defect, not a
// document change, so it is surfaced as an error rather than a skip.
var ErrInvalidPartial = errors.New("invalid update partial")

// ReconcileResult holds the outcome of merging update partials into a
// baseline question set.
type ReconcileResult struct {
	// Merged is the full baseline list, with the answer payload of every
	// matched question replaced. Questions are never added or reordered.
	Merged []Question `json:"merged"`

	// Skipped lists the question text of partials that matched no baseline
	// question by exact or normalized comparison. Question wording shifts
	// between document revisions, so these are expected and non-fatal.
	Skipped []string `json:"skipped"`
}

// Reconcile merges update partials into the baseline question set. Each
// partial is matched to its baseline counterpart by question text, first
// exactly, then by normalized comparison (trailing asterisk, curly quotes,
// case). On a hit, only the answer payload is replaced; every other field of
// the baseline question is preserved verbatim. On a double miss the partial
// is recorded in the skip list and dropped.
//
// A partial missing question text or an answer payload violates the
// extractor contract and aborts reconciliation with ErrInvalidPartial.
func Reconcile(baseline []Question, partials []UpdatePartial) (*ReconcileResult, error) {
	// Both lookup maps are built once per call, not per partial. On key
	// collisions the earliest question wins, preserving source order bias.
	exact := make(map[string]int, len(baseline))
	normalized := make(map[string]int, len(baseline))
	for i, question := range baseline {
		if _, seen := exact[question.Question]; !seen {
			exact[question.Question] = i
		}
		key := NormalizeForMatching(question.Question)
		if _, seen := normalized[key]; !seen {
			normalized[key] = i
		}
	}

	merged := make([]Question, len(baseline))
	copy(merged, baseline)

	result := &ReconcileResult{Merged: merged, Skipped: []string{}}

	for i, partial := range partials {
		if partial.Question == "" {
			return nil, fmt.Errorf("%w: partial %d has no question text", ErrInvalidPartial, i)
		}
		if partial.Answers.Type == "" || (len(partial.Answers.Choices) == 0 && len(partial.Answers.ByState) == 0) {
			return nil, fmt.Errorf("%w: partial %d (%q) has no answer payload", ErrInvalidPartial, i, partial.Question)
		}

		idx, found := exact[partial.Question]
		if !found {
			idx, found = normalized[NormalizeForMatching(partial.Question)]
		}
		if !found {
			result.Skipped = append(result.Skipped, partial.Question)
			continue
		}

		merged[idx].Answers = partial.Answers
	}

	return result, nil
}
