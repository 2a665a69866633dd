package civics

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func loadSampleText(t *testing.T) string {
	t.Helper()

	testdataPath := filepath.Join("..", "..", "testdata", "civics-sample.txt")
	data, err := os.ReadFile(testdataPath)
	if err != nil {
		t.Fatalf("Failed to load sample text: %v", err)
	}
	return string(data)
}

func TestParse_SingleQuestion(t *testing.T) {
	input := strings.Join([]string{
		"AMERICAN GOVERNMENT",
		"A: Principles of American Democracy",
		"1. What is the supreme law of the land?",
		". the Constitution",
	}, "\n")

	questions := Parse(input)
	if len(questions) != 1 {
		t.Fatalf("Question count mismatch: got %d, want 1", len(questions))
	}

	want := Question{
		Theme:           "AMERICAN GOVERNMENT",
		Section:         "Principles of American Democracy",
		Question:        "What is the supreme law of the land?",
		Number:          1,
		ExpectedAnswers: 1,
		Answers:         Answers{Type: AnswerText, Choices: []string{"the Constitution"}},
	}
	if !reflect.DeepEqual(questions[0], want) {
		t.Errorf("Question mismatch:\ngot  %+v\nwant %+v", questions[0], want)
	}
}

func TestParse_SampleDocument(t *testing.T) {
	questions := Parse(loadSampleText(t))

	stats := Stats(questions)
	t.Logf("Parsed %d themes, %d sections, %d questions, %d answers",
		stats.Themes, stats.Sections, stats.Questions, stats.Answers)

	if stats.Questions != 9 {
		t.Fatalf("Question count mismatch: got %d, want %d", stats.Questions, 9)
	}
	if stats.Themes != 3 {
		t.Errorf("Theme count mismatch: got %d, want %d", stats.Themes, 3)
	}
	if stats.Sections != 4 {
		t.Errorf("Section count mismatch: got %d, want %d", stats.Sections, 4)
	}

	// Questions appear in encounter order, not sorted by number.
	wantNumbers := []int{1, 2, 3, 9, 13, 17, 20, 64, 88}
	for i, q := range questions {
		if q.Number != wantNumbers[i] {
			t.Errorf("Question %d number mismatch: got %d, want %d", i, q.Number, wantNumbers[i])
		}
	}
}

func TestParse_ContinuationLinesJoined(t *testing.T) {
	questions := Parse(loadSampleText(t))

	var q3 *Question
	for i := range questions {
		if questions[i].Number == 3 {
			q3 = &questions[i]
			break
		}
	}
	if q3 == nil {
		t.Fatal("Question 3 not found")
	}

	want := "The idea of self-government is in the first three words of the Constitution. What are these words?"
	if q3.Question != want {
		t.Errorf("Continuation join mismatch:\ngot  %q\nwant %q", q3.Question, want)
	}
	if q3.ExpectedAnswers != 1 {
		t.Errorf("ExpectedAnswers = %d, want 1", q3.ExpectedAnswers)
	}
}

func TestParse_ExpectedAnswerCounts(t *testing.T) {
	questions := Parse(loadSampleText(t))

	wantCounts := map[int]int{
		1:  1,
		9:  2, // "two rights"
		17: 1, // compound singular exception
		64: 3, // "Name three."
		88: 1, // "Name one of"
	}

	for _, q := range questions {
		want, ok := wantCounts[q.Number]
		if !ok {
			continue
		}
		if q.ExpectedAnswers != want {
			t.Errorf("Question %d expectedAnswers = %d, want %d", q.Number, q.ExpectedAnswers, want)
		}
	}
}

func TestParse_NoStructuralMarkers(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"just some prose\nacross multiple lines\nwith no structure",
	}

	for _, input := range inputs {
		questions := Parse(input)
		if len(questions) != 0 {
			t.Errorf("Parse(%q) returned %d questions, want 0", input, len(questions))
		}
	}
}

func TestParse_QuestionWithoutAnswers(t *testing.T) {
	input := strings.Join([]string{
		"AMERICAN HISTORY",
		"A: Recent American History",
		"78. Name one war fought by the United States in the 1900s.",
		"79. Who was President during World War I?",
		". (Woodrow) Wilson",
	}, "\n")

	questions := Parse(input)
	if len(questions) != 2 {
		t.Fatalf("Question count mismatch: got %d, want 2", len(questions))
	}

	if got := questions[0].Answers.Choices; len(got) != 0 {
		t.Errorf("Question 78 answers = %v, want empty", got)
	}
	if questions[0].Answers.Choices == nil {
		t.Error("Answer choices should be an empty slice, not nil")
	}
	if got := questions[1].Answers.Choices; len(got) != 1 || got[0] != "(Woodrow) Wilson" {
		t.Errorf("Question 79 answers = %v, want [(Woodrow) Wilson]", got)
	}
}

func TestParse_RepeatedThemeNamesStaySeparate(t *testing.T) {
	input := strings.Join([]string{
		"AMERICAN GOVERNMENT",
		"A: Principles of American Democracy",
		"1. What is the supreme law of the land?",
		". the Constitution",
		"AMERICAN GOVERNMENT",
		"B: System of Government",
		"13. Name one branch or part of the government.",
		". Congress",
	}, "\n")

	themes := ParseTree(input)
	if len(themes) != 2 {
		t.Fatalf("Theme count mismatch: got %d, want 2", len(themes))
	}
	if themes[0].Name != themes[1].Name {
		t.Errorf("Theme names differ: %q vs %q", themes[0].Name, themes[1].Name)
	}
	if len(themes[0].Sections) != 1 || len(themes[1].Sections) != 1 {
		t.Errorf("Section counts = %d, %d, want 1, 1", len(themes[0].Sections), len(themes[1].Sections))
	}
}

func TestParse_StrayProseIgnored(t *testing.T) {
	input := strings.Join([]string{
		"Page header left over from extraction",
		"AMERICAN GOVERNMENT",
		"explanatory text between elements",
		"A: Principles of American Democracy",
		"more stray prose",
		"1. What is the supreme law of the land?",
		". the Constitution",
	}, "\n")

	questions := Parse(input)
	if len(questions) != 1 {
		t.Fatalf("Question count mismatch: got %d, want 1", len(questions))
	}
	if questions[0].Question != "What is the supreme law of the land?" {
		t.Errorf("Question text = %q", questions[0].Question)
	}
}

func TestParse_Deterministic(t *testing.T) {
	text := loadSampleText(t)

	first := Parse(text)
	second := Parse(text)

	if !reflect.DeepEqual(first, second) {
		t.Error("Re-parsing identical input produced different output")
	}
}

func TestStats_EmptySet(t *testing.T) {
	stats := Stats(nil)
	if stats.Themes != 0 || stats.Sections != 0 || stats.Questions != 0 {
		t.Errorf("Stats(nil) = %+v, want zero", stats)
	}
}
