package civics

import (
	"regexp"
	"strings"
)

// The heuristic below encodes accumulated corrections against real question
// wording. The exception lists are authoritative data; do not fold them into
// a more general rule.

// askForOnePhrases mark questions that mention several items but ask the
// respondent to supply just one. They override any number words present
// ("There are four amendments ... Describe one of them." expects 1).
var askForOnePhrases = []string{
	"describe one of them",
	"name one of",
	"what is one",
	"give one",
}

// compoundSingularPhrases are questions whose number word names the parts of
// a single compound answer, not a count of distinct answers.
var compoundSingularPhrases = []string{
	"what are the two parts of the u.s. congress",
	"what are the two main political parties",
}

// numberWords maps spelled-out and digit forms to the count they declare.
var numberWords = map[string]int{
	"two": 2, "three": 3, "four": 4, "five": 5,
	"2": 2, "3": 3, "4": 4, "5": 5,
}

var (
	// countedNounPattern matches a number word immediately followed by one
	// of the plural nouns (or qualifying adjectives) the document uses when
	// it really asks for that many distinct answers.
	countedNounPattern = regexp.MustCompile(`\b(two|three|four|five|[2-5])\s+(rights|parts|branches|ways|examples|things|reasons|amendments|types|kinds|names|national|main|major|important)\b`)

	// askForCountPattern matches the "Name three." / "Give two." style of
	// instruction, wherever it appears in the question text.
	askForCountPattern = regexp.MustCompile(`\b(name|what are|give|list)\s+(two|three|four|five|[2-5])\b`)
)

// DetectExpectedAnswers infers how many distinct answers a correct response
// to the question must contain. Rules are evaluated strictly in order and
// the first match wins:
//
//  1. an ask-for-one phrase forces 1, regardless of number words present;
//  2. a known compound-singular phrasing forces 1;
//  3. a number word followed by a counted plural noun, or a name/give/list
//     instruction with a number word, yields that count (2-5);
//  4. otherwise the default is 1.
func DetectExpectedAnswers(questionText string) int {
	text := strings.ToLower(questionText)

	for _, phrase := range askForOnePhrases {
		if strings.Contains(text, phrase) {
			return 1
		}
	}

	for _, phrase := range compoundSingularPhrases {
		if strings.Contains(text, phrase) {
			return 1
		}
	}

	if m := countedNounPattern.FindStringSubmatch(text); m != nil {
		return numberWords[m[1]]
	}
	if m := askForCountPattern.FindStringSubmatch(text); m != nil {
		return numberWords[m[2]]
	}

	return 1
}
