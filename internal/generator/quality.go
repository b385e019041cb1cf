package generator

import "github.com/quizdeck/backend/internal/quiz"

// StructuralScore holds the individual structural checks for one question.
type StructuralScore struct {
	HasChoices         bool
	AnswerKeyValid     bool
	ExplanationPresent bool
	FullChoiceSet      bool
}

// ComputeStructuralScore evaluates a single parsed question.
func ComputeStructuralScore(q *quiz.Question) StructuralScore {
	keyOK := len(q.Answers) > 0
	for _, a := range q.Answers {
		if _, ok := q.ChoiceText(a); !ok {
			keyOK = false
		}
	}

	n := len(q.Choices)
	return StructuralScore{
		HasChoices:         n >= 2,
		AnswerKeyValid:     keyOK,
		ExplanationPresent: q.Explanation != "",
		FullChoiceSet:      n == 4 || n == 5,
	}
}

// Score weighs the checks into 0.0-1.0. A broken answer key costs the most
// since the question cannot be graded.
func (s StructuralScore) Score() float64 {
	score := 0.0
	if s.HasChoices {
		score += 0.20
	}
	if s.AnswerKeyValid {
		score += 0.45
	}
	if s.ExplanationPresent {
		score += 0.20
	}
	if s.FullChoiceSet {
		score += 0.15
	}
	return score
}

// ClassifyQuality returns a classification based on the quality score.
// Returns: "reject" (< 0.50), "flagged" (0.50-0.70), "passed" (> 0.70)
func ClassifyQuality(score float64) string {
	if score < 0.50 {
		return "reject"
	}
	if score <= 0.70 {
		return "flagged"
	}
	return "passed"
}
