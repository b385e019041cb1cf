package generator

import (
	"math"
	"testing"

	"github.com/quizdeck/backend/internal/quiz"
)

func fullQuestion() *quiz.Question {
	return &quiz.Question{
		Text: "Which gas do plants absorb?",
		Choices: []quiz.Choice{
			{Label: "A", Text: "Oxygen"},
			{Label: "B", Text: "Carbon dioxide"},
			{Label: "C", Text: "Nitrogen"},
			{Label: "D", Text: "Helium"},
		},
		Answers:     []string{"B"},
		Explanation: "Plants take in CO2 for photosynthesis.",
	}
}

func TestComputeStructuralScore_AllPerfect(t *testing.T) {
	s := ComputeStructuralScore(fullQuestion())
	if !s.HasChoices || !s.AnswerKeyValid || !s.ExplanationPresent || !s.FullChoiceSet {
		t.Errorf("expected every check to pass, got %+v", s)
	}
	if !almostEqual(s.Score(), 1.0) {
		t.Errorf("expected score ~1.0, got %f", s.Score())
	}
	if got := ClassifyQuality(s.Score()); got != "passed" {
		t.Errorf("expected 'passed', got %q", got)
	}
}

func TestComputeStructuralScore_MissingExplanation(t *testing.T) {
	q := fullQuestion()
	q.Explanation = ""

	s := ComputeStructuralScore(q)
	// 0.20 + 0.45 + 0.15 = 0.80
	if !almostEqual(s.Score(), 0.80) {
		t.Errorf("expected score ~0.80, got %f", s.Score())
	}
}

func TestComputeStructuralScore_BrokenKey(t *testing.T) {
	q := fullQuestion()
	q.Answers = []string{"B", "E"}

	s := ComputeStructuralScore(q)
	if s.AnswerKeyValid {
		t.Error("expected answer key with E to be invalid")
	}
	// 0.20 + 0.20 + 0.15 = 0.55
	if !almostEqual(s.Score(), 0.55) {
		t.Errorf("expected score ~0.55, got %f", s.Score())
	}
	if got := ClassifyQuality(s.Score()); got != "flagged" {
		t.Errorf("expected 'flagged', got %q", got)
	}
}

func TestComputeStructuralScore_EmptyKey(t *testing.T) {
	q := fullQuestion()
	q.Answers = []string{}
	q.Choices = q.Choices[:2]
	q.Explanation = ""

	s := ComputeStructuralScore(q)
	// only HasChoices: 0.20
	if !almostEqual(s.Score(), 0.20) {
		t.Errorf("expected score ~0.20, got %f", s.Score())
	}
	if got := ClassifyQuality(s.Score()); got != "reject" {
		t.Errorf("expected 'reject', got %q", got)
	}
}

func TestClassifyQuality_Reject(t *testing.T) {
	if got := ClassifyQuality(0.49); got != "reject" {
		t.Errorf("expected 'reject' for 0.49, got %q", got)
	}
	if got := ClassifyQuality(0.0); got != "reject" {
		t.Errorf("expected 'reject' for 0.0, got %q", got)
	}
}

func TestClassifyQuality_Flagged(t *testing.T) {
	if got := ClassifyQuality(0.50); got != "flagged" {
		t.Errorf("expected 'flagged' for 0.50, got %q", got)
	}
	if got := ClassifyQuality(0.70); got != "flagged" {
		t.Errorf("expected 'flagged' for 0.70, got %q", got)
	}
}

func TestClassifyQuality_Passed(t *testing.T) {
	if got := ClassifyQuality(0.71); got != "passed" {
		t.Errorf("expected 'passed' for 0.71, got %q", got)
	}
	if got := ClassifyQuality(1.0); got != "passed" {
		t.Errorf("expected 'passed' for 1.0, got %q", got)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}
