// Package voice holds the text side of spoken quizzing: the prompt read to
// the user and the matching of a recognized utterance to a choice. Speech
// synthesis and recognition themselves live outside this module.
package voice

import (
	"fmt"
	"strings"

	"github.com/quizdeck/backend/internal/quiz"
)

// ReadAloud builds the text spoken for a question, listing choices under
// their display labels.
func ReadAloud(q *quiz.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. Options: ", q.Text)
	for _, dc := range q.DisplayOrder() {
		fmt.Fprintf(&b, "%s: %s. ", dc.Label, dc.Text)
	}
	return b.String()
}

// MatchSpoken maps an utterance to a display label. The utterance matches
// a choice when it is exactly the label or contains the choice text, both
// compared case-insensitively. The first hit in display order wins.
func MatchSpoken(q *quiz.Question, spoken string) (string, bool) {
	spoken = strings.ToLower(strings.TrimSpace(spoken))
	if spoken == "" {
		return "", false
	}

	for _, dc := range q.DisplayOrder() {
		text := strings.ToLower(dc.Text)
		if spoken == strings.ToLower(dc.Label) || (text != "" && strings.Contains(spoken, text)) {
			return dc.Label, true
		}
	}
	return "", false
}
