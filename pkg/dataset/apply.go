package dataset

import (
	"github.com/civicstudy/civica/pkg/civics"
	"github.com/civicstudy/civica/pkg/directory"
)

// variableQuestionText maps each officeholder answer type to the
// normalized text of the question whose answer varies by state.
var variableQuestionText = map[civics.AnswerType]string{
	civics.AnswerSenator:        "who is one of your state's u.s. senators now?",
	civics.AnswerRepresentative: "name your u.s. representative.",
	civics.AnswerGovernor:       "who is the governor of your state now?",
}

// ApplyOfficeholders replaces the answer payload of the variable question
// for answerType with a per-state payload built from officeholders. The
// input list is not modified; the returned bool reports whether the
// variable question was found.
func ApplyOfficeholders(questions []civics.Question, answerType civics.AnswerType, officeholders []directory.Officeholder) ([]civics.Question, bool) {
	target, ok := variableQuestionText[answerType]
	if !ok {
		return questions, false
	}

	out := make([]civics.Question, len(questions))
	copy(out, questions)

	for i := range out {
		if civics.NormalizeForMatching(out[i].Question) != target {
			continue
		}
		out[i].Answers = directory.Payload(answerType, officeholders)
		return out, true
	}
	return out, false
}
