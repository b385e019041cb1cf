package quiz

import (
	"math/rand/v2"
	"strings"
)

// displayLabels is the fixed label sequence shown to users after shuffling.
var displayLabels = [...]string{"A", "B", "C", "D", "E"}

// MaxChoices is how many choices a question can display.
const MaxChoices = len(displayLabels)

// Choice is one answer option under its original (source) label.
type Choice struct {
	Label string `json:"label" yaml:"label"`
	Text  string `json:"text" yaml:"text"`
}

// DisplayChoice is a choice as rendered: its display label, the original
// label it stands for, and the text.
type DisplayChoice struct {
	Label    string `json:"label"`
	Original string `json:"-"`
	Text     string `json:"text"`
}

// Question is one gradable quiz record.
//
// ChoiceMap translates display labels back to original labels and is only
// populated by ShuffleChoices. A Question is not safe for concurrent use:
// callers must serialize a shuffle with the grading calls that rely on it.
type Question struct {
	Text        string            `json:"text" yaml:"text"`
	Choices     []Choice          `json:"choices" yaml:"choices"`
	Answers     []string          `json:"answers" yaml:"answers"`
	Explanation string            `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	ChoiceMap   map[string]string `json:"-" yaml:"-"`

	display []DisplayChoice
}

// ChoiceText returns the text stored under an original label.
func (q *Question) ChoiceText(label string) (string, bool) {
	for _, c := range q.Choices {
		if c.Label == label {
			return c.Text, true
		}
	}
	return "", false
}

// MultiSelect reports whether more than one label is correct.
func (q *Question) MultiSelect() bool {
	return len(q.Answers) > 1
}

// setChoice appends a choice, or replaces the text in place when the label
// was already seen.
func (q *Question) setChoice(label, text string) {
	for i := range q.Choices {
		if q.Choices[i].Label == label {
			q.Choices[i].Text = text
			return
		}
	}
	q.Choices = append(q.Choices, Choice{Label: label, Text: text})
}

// ShuffleChoices relabels the choices and rebuilds ChoiceMap. When enabled
// the order is a fresh uniform permutation on every call; when disabled the
// source order is kept and display labels equal the positional sequence.
func (q *Question) ShuffleChoices(enabled bool) []DisplayChoice {
	return q.shuffle(enabled, rand.IntN)
}

func (q *Question) shuffle(enabled bool, intn func(int) int) []DisplayChoice {
	entries := make([]Choice, len(q.Choices))
	copy(entries, q.Choices)

	if enabled {
		// Fisher-Yates
		for i := len(entries) - 1; i > 0; i-- {
			j := intn(i + 1)
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	if len(entries) > MaxChoices {
		entries = entries[:MaxChoices]
	}

	q.ChoiceMap = make(map[string]string, len(entries))
	q.display = make([]DisplayChoice, len(entries))
	for i, c := range entries {
		label := displayLabels[i]
		q.ChoiceMap[label] = c.Label
		q.display[i] = DisplayChoice{Label: label, Original: c.Label, Text: c.Text}
	}

	return q.DisplayOrder()
}

// DisplayOrder returns the choices as produced by the last shuffle, or nil
// if the question has never been shuffled.
func (q *Question) DisplayOrder() []DisplayChoice {
	if q.display == nil {
		return nil
	}
	out := make([]DisplayChoice, len(q.display))
	copy(out, q.display)
	return out
}

// CorrectDisplayLabels maps the answer key forward through ChoiceMap.
// Answer labels that are not on display are left out.
func (q *Question) CorrectDisplayLabels() []string {
	var labels []string
	for _, dc := range q.display {
		for _, a := range q.Answers {
			if dc.Original == a {
				labels = append(labels, dc.Label)
				break
			}
		}
	}
	return labels
}

// normalizedText is the dedup key for a question prompt.
func normalizedText(text string) string {
	return strings.ToLower(text)
}
