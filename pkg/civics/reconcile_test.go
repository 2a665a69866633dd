package civics

import (
	"errors"
	"reflect"
	"testing"
)

func baselineFixture() []Question {
	return []Question{
		{
			Theme:           "AMERICAN GOVERNMENT",
			Section:         "System of Government",
			Question:        "What is the name of the President of the United States now?*",
			Number:          28,
			ExpectedAnswers: 1,
			Answers:         Answers{Type: AnswerText, Choices: []string{"(out of date answer)"}},
		},
		{
			Theme:           "AMERICAN GOVERNMENT",
			Section:         "System of Government",
			Question:        "Who is one of your state's U.S. Senators now?*",
			Number:          20,
			ExpectedAnswers: 1,
			Answers:         Answers{Type: AnswerText, Choices: []string{"answers will vary"}},
		},
		{
			Theme:           "AMERICAN GOVERNMENT",
			Section:         "Principles of American Democracy",
			Question:        "What is the supreme law of the land?",
			Number:          1,
			ExpectedAnswers: 1,
			Answers:         Answers{Type: AnswerText, Choices: []string{"the Constitution"}},
		},
	}
}

func TestReconcile_ExactMatch(t *testing.T) {
	baseline := baselineFixture()
	partials := []UpdatePartial{
		{
			Question: "What is the name of the President of the United States now?*",
			Answers:  Answers{Type: AnswerText, Choices: []string{"(current president)"}},
		},
	}

	result, err := Reconcile(baseline, partials)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", result.Skipped)
	}
	if got := result.Merged[0].Answers.Choices; len(got) != 1 || got[0] != "(current president)" {
		t.Errorf("Merged answers = %v, want [(current president)]", got)
	}

	// Every other field is preserved verbatim.
	want := baseline[0]
	want.Answers = partials[0].Answers
	if !reflect.DeepEqual(result.Merged[0], want) {
		t.Errorf("Merged question mismatch:\ngot  %+v\nwant %+v", result.Merged[0], want)
	}
}

func TestReconcile_NormalizedMatch(t *testing.T) {
	baseline := baselineFixture()

	// Trailing asterisk dropped and curly apostrophe instead of straight:
	// still matches via normalized comparison.
	partials := []UpdatePartial{
		{
			Question: "Who is one of your state’s U.S. Senators now?",
			Answers:  Answers{Type: AnswerSenator, ByState: map[string][]string{"VT": {"Peter Welch", "Bernie Sanders"}}},
		},
	}

	result, err := Reconcile(baseline, partials)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Skipped) != 0 {
		t.Fatalf("Skipped = %v, want none", result.Skipped)
	}

	merged := result.Merged[1]
	if merged.Answers.Type != AnswerSenator {
		t.Errorf("Payload type = %s, want %s", merged.Answers.Type, AnswerSenator)
	}
	// The payload shape is carried through unchanged.
	if !reflect.DeepEqual(merged.Answers.ByState, partials[0].Answers.ByState) {
		t.Errorf("ByState payload mismatch: got %v", merged.Answers.ByState)
	}
	// The baseline question keeps its own wording.
	if merged.Question != baseline[1].Question {
		t.Errorf("Question text changed: got %q", merged.Question)
	}
}

func TestReconcile_UnmatchedPartialSkipped(t *testing.T) {
	baseline := baselineFixture()
	partials := []UpdatePartial{
		{
			Question: "What is the political party of the President now?",
			Answers:  Answers{Type: AnswerText, Choices: []string{"(party)"}},
		},
	}

	result, err := Reconcile(baseline, partials)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Skipped) != 1 || result.Skipped[0] != partials[0].Question {
		t.Errorf("Skipped = %v, want [%q]", result.Skipped, partials[0].Question)
	}

	// The skipped partial is not synthesized into the merged output.
	if !reflect.DeepEqual(result.Merged, baseline) {
		t.Errorf("Merged output changed despite skip:\ngot  %+v\nwant %+v", result.Merged, baseline)
	}
}

func TestReconcile_InvalidPartials(t *testing.T) {
	tests := []struct {
		name    string
		partial UpdatePartial
	}{
		{
			name:    "missing question text",
			partial: UpdatePartial{Answers: Answers{Type: AnswerText, Choices: []string{"x"}}},
		},
		{
			name:    "missing answer payload",
			partial: UpdatePartial{Question: "What is the supreme law of the land?"},
		},
		{
			name:    "empty answer payload",
			partial: UpdatePartial{Question: "What is the supreme law of the land?", Answers: Answers{Type: AnswerText}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(baselineFixture(), []UpdatePartial{tt.partial})
			if !errors.Is(err, ErrInvalidPartial) {
				t.Fatalf("got err %v, want ErrInvalidPartial", err)
			}
		})
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	result, err := Reconcile(nil, nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(result.Merged) != 0 || len(result.Skipped) != 0 {
		t.Errorf("got %+v, want empty result", result)
	}
}

func TestReconcile_BaselineUntouched(t *testing.T) {
	baseline := baselineFixture()
	original := baselineFixture()

	partials := []UpdatePartial{
		{
			Question: "What is the supreme law of the land?",
			Answers:  Answers{Type: AnswerText, Choices: []string{"replaced"}},
		},
	}

	if _, err := Reconcile(baseline, partials); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if !reflect.DeepEqual(baseline, original) {
		t.Error("Reconcile mutated its baseline input")
	}
}
