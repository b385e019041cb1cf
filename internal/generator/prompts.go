package generator

import (
	"fmt"
	"strings"
)

const (
	minQuestions = 1
	maxQuestions = 20
)

// ClampCount keeps a requested question count within what one call can
// produce reliably.
func ClampCount(count int) int {
	if count < minQuestions {
		return 5
	}
	if count > maxQuestions {
		return maxQuestions
	}
	return count
}

const formatRules = `OUTPUT FORMAT (plain text, no markdown, no JSON):

1. Question text on a single line, numbered from 1
A. First choice
B. Second choice
C. Third choice
D. Fourth choice
Answer: B
Explanation: Why B is correct.

RULES:
- Number every question as "N. " at the start of its first line
- Use between 2 and 5 choices labeled A. through E. in order, one per line
- The Answer line lists every correct label, comma separated (e.g. "Answer: A, C")
- Every Answer label must be one of the listed choices
- The Explanation may continue on following lines but must not start with a number and a dot
- Separate questions with one blank line
- Do not repeat a question`

// QuizSystemPrompt is shared by every generation request.
func QuizSystemPrompt() string {
	return `You are an expert quiz author writing self-study multiple-choice questions.
A question may have one or more correct choices, and its answer key lists all of them and nothing else.
Distractors are plausible but clearly wrong to someone who knows the material.

` + formatRules + `

Respond with the quiz only.`
}

func BuildQuizUserPrompt(topic string, count int) string {
	count = ClampCount(count)

	var b strings.Builder
	fmt.Fprintf(&b, "Write %d multiple-choice questions about: %s\n\n", count, strings.TrimSpace(topic))
	b.WriteString("Vary the position of the correct choice across questions.\n")
	if count >= 4 {
		b.WriteString("At least one question should have more than one correct choice.\n")
	}
	return b.String()
}
