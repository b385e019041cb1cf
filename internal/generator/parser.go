package generator

import (
	"fmt"
	"strings"

	"github.com/quizdeck/backend/internal/quiz"
)

// GeneratedQuiz is an LLM response that survived parsing and validation.
// Text is the cleaned quiz source, suitable for saving to the bank.
type GeneratedQuiz struct {
	Text      string
	Questions []*quiz.Question
	Stats     quiz.ParseStats
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse strips any markdown fence from the response and runs it
// through the quiz parser.
func ParseResponse(responseBody string, parser *quiz.Parser) (*GeneratedQuiz, error) {
	cleaned := stripCodeFences(responseBody)

	questions, stats := parser.ParseWithStats(cleaned)
	if err := validateQuiz(questions); err != nil {
		return nil, err
	}

	return &GeneratedQuiz{Text: cleaned, Questions: questions, Stats: stats}, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the info string, e.g. ```text
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], " ") {
			s = s[nl+1:]
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateQuiz(questions []*quiz.Question) error {
	if len(questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in response"}}
	}

	var errs []string
	for i, q := range questions {
		qNum := i + 1

		if len(q.Choices) < 2 {
			errs = append(errs, fmt.Sprintf("question %d: expected at least 2 choices, got %d", qNum, len(q.Choices)))
		}
		if len(q.Answers) == 0 {
			errs = append(errs, fmt.Sprintf("question %d: missing answer key", qNum))
		}
		for _, a := range q.Answers {
			if _, ok := q.ChoiceText(a); !ok {
				errs = append(errs, fmt.Sprintf("question %d: answer %q is not one of the choices", qNum, a))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
