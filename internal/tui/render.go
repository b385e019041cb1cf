package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/quizdeck/backend/internal/quiz"
	"github.com/quizdeck/backend/internal/session"
)

var (
	colorHeader    = lipgloss.Color("33")
	colorMuted     = lipgloss.Color("242")
	colorCorrect   = lipgloss.Color("42")
	colorIncorrect = lipgloss.Color("196")
	colorNotice    = lipgloss.Color("214")
)

func renderHeader(index, total int, multi bool, noColor bool) string {
	line := fmt.Sprintf("Question %d of %d", index+1, total)
	if multi {
		line += " | select all that apply"
	}
	return stylize(line, noColor, colorHeader)
}

func renderQuestion(text string, noColor bool) string {
	if noColor {
		return "\n" + text + "\n"
	}
	return "\n" + lipgloss.NewStyle().Bold(true).Render(text) + "\n"
}

// renderChoices marks the cursor row, selected choices and, once graded,
// which display labels were correct.
func renderChoices(choices []quiz.DisplayChoice, cursor int, selected map[string]bool, outcome *session.Outcome, noColor bool) string {
	correct := make(map[string]bool)
	if outcome != nil {
		for _, l := range outcome.CorrectAnswers {
			correct[l] = true
		}
	}

	lines := make([]string, len(choices))
	for i, c := range choices {
		pointer := "  "
		if i == cursor {
			pointer = "> "
		}
		box := "[ ]"
		if selected[c.Label] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %s. %s", pointer, box, c.Label, c.Text)

		switch {
		case outcome != nil && correct[c.Label]:
			line = stylize(line, noColor, colorCorrect)
		case outcome != nil && selected[c.Label]:
			line = stylize(line, noColor, colorIncorrect)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func renderOutcome(outcome *session.Outcome, noColor bool) string {
	if outcome == nil {
		return ""
	}
	verdict := stylize("\nIncorrect.", noColor, colorIncorrect)
	if outcome.Correct {
		verdict = stylize("\nCorrect!", noColor, colorCorrect)
	}
	if outcome.Explanation == "" {
		return verdict
	}
	return verdict + "\n" + stylize(outcome.Explanation, noColor, colorMuted)
}

func renderNotice(notice string, noColor bool) string {
	if notice == "" {
		return ""
	}
	return stylize("\n"+notice, noColor, colorNotice)
}

func renderSummary(summary session.Summary, noColor bool) string {
	var b strings.Builder
	b.WriteString(stylize(fmt.Sprintf("You scored %d/%d (%d%%)", summary.Correct, summary.Total, summary.Percent), noColor, colorHeader))
	b.WriteString("\n\n")
	for _, item := range summary.Items {
		var color lipgloss.Color
		var mark string
		switch item.Status {
		case session.StatusCorrect:
			color, mark = colorCorrect, "Correct"
		case session.StatusIncorrect:
			color, mark = colorIncorrect, "Incorrect"
		default:
			color, mark = colorMuted, "Missed"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", item.Index+1, item.Text, stylize("("+mark+")", noColor, color))
	}
	return b.String()
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
