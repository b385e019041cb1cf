package quiz

import (
	"reflect"
	"testing"
)

func sampleQuestion() *Question {
	return &Question{
		Text:        "Which are even?",
		Choices:     []Choice{{"A", "1"}, {"B", "2"}, {"C", "3"}, {"D", "4"}, {"E", "5"}},
		Answers:     []string{"B", "D"},
		Explanation: "Even numbers divide by two.",
	}
}

func TestShuffleChoices_DisabledIsIdentity(t *testing.T) {
	q := sampleQuestion()

	first := q.ShuffleChoices(false)
	second := q.ShuffleChoices(false)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("disabled shuffle changed order: %v vs %v", first, second)
	}

	for i, dc := range first {
		if dc.Label != q.Choices[i].Label || dc.Original != q.Choices[i].Label || dc.Text != q.Choices[i].Text {
			t.Errorf("position %d: got %+v, want label/text of %+v", i, dc, q.Choices[i])
		}
	}
}

func TestShuffleChoices_RoundTripGradesCorrect(t *testing.T) {
	for _, q := range ParseQuestions(arithmeticQuiz + "\n2. Which are even?\nA. 1\nB. 2\nC. 3\nD. 4\nAnswer: B, D\nExplanation: Divisible by two.") {
		for i := 0; i < 50; i++ {
			q.ShuffleChoices(true)
			labels := q.CorrectDisplayLabels()
			if !q.Check(labels) {
				t.Fatalf("%q: correct display labels %v did not grade correct (map %v)", q.Text, labels, q.ChoiceMap)
			}
		}
	}
}

func TestShuffleChoices_ReplacesChoiceMap(t *testing.T) {
	q := sampleQuestion()
	q.ChoiceMap = map[string]string{"Z": "A"}

	q.ShuffleChoices(true)
	if _, ok := q.ChoiceMap["Z"]; ok {
		t.Error("stale entry survived a reshuffle")
	}
	if len(q.ChoiceMap) != len(q.Choices) {
		t.Errorf("choice map has %d entries, want %d", len(q.ChoiceMap), len(q.Choices))
	}

	originals := map[string]bool{}
	for display, orig := range q.ChoiceMap {
		if originals[orig] {
			t.Errorf("original label %s mapped twice", orig)
		}
		originals[orig] = true
		if text, _ := q.ChoiceText(orig); text == "" {
			t.Errorf("display %s maps to unknown original %s", display, orig)
		}
	}
}

func TestShuffle_FisherYatesWithFixedSource(t *testing.T) {
	q := sampleQuestion()

	// Always picking j = 0 rotates every element through the front.
	got := q.shuffle(true, func(int) int { return 0 })

	var originals []string
	for _, dc := range got {
		originals = append(originals, dc.Original)
	}
	want := []string{"B", "C", "D", "E", "A"}
	if !reflect.DeepEqual(originals, want) {
		t.Errorf("permutation = %v, want %v", originals, want)
	}
	if got[0].Label != "A" || got[4].Label != "E" {
		t.Errorf("display labels must stay positional, got %v", got)
	}
	if !reflect.DeepEqual(q.CorrectDisplayLabels(), []string{"A", "C"}) {
		t.Errorf("correct display labels = %v, want [A C]", q.CorrectDisplayLabels())
	}
}

func TestDisplayOrder_ReturnsCopy(t *testing.T) {
	q := sampleQuestion()
	if q.DisplayOrder() != nil {
		t.Fatal("expected nil display order before shuffling")
	}
	q.ShuffleChoices(false)

	order := q.DisplayOrder()
	order[0].Text = "mutated"
	if q.DisplayOrder()[0].Text == "mutated" {
		t.Error("DisplayOrder leaked internal slice")
	}
}

func TestCheck(t *testing.T) {
	q := ParseQuestions(arithmeticQuiz)[0]
	q.ShuffleChoices(false)

	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"correct", []string{"B"}, true},
		{"wrong", []string{"A"}, false},
		{"empty", nil, false},
		{"extra wrong label", []string{"A", "B"}, false},
		{"duplicate correct label", []string{"B", "B"}, true},
		{"stale label only", []string{"E"}, false},
		{"lowercase is not a label", []string{"b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.Check(tt.selected); got != tt.want {
				t.Errorf("Check(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestCheck_EmptySubmissionAlwaysFalse(t *testing.T) {
	q := sampleQuestion()
	for i := 0; i < 10; i++ {
		q.ShuffleChoices(true)
		if q.Check([]string{}) {
			t.Fatal("empty submission graded correct")
		}
	}
}

func TestCheck_EmptyAnswerKeyNeverMatches(t *testing.T) {
	q := sampleQuestion()
	q.Answers = []string{}
	q.ShuffleChoices(false)

	for _, sel := range [][]string{{"A"}, {"Z"}, {"A", "B", "C", "D", "E"}} {
		if q.Check(sel) {
			t.Errorf("Check(%v) passed with no answer key", sel)
		}
	}
}

func TestCheck_BeforeShuffleNothingMaps(t *testing.T) {
	q := sampleQuestion()
	if q.Check([]string{"B", "D"}) {
		t.Error("grading without a choice map should fail")
	}
}

func TestCheck_AnswerOutsideChoicesUnmatchable(t *testing.T) {
	q := sampleQuestion()
	q.Choices = q.Choices[:3]
	q.Answers = []string{"B", "D"}
	q.ShuffleChoices(false)

	if q.Check([]string{"B"}) || q.Check([]string{"B", "C"}) {
		t.Error("answer key with a missing label must never grade correct")
	}
}

func TestIsAnswerCorrect(t *testing.T) {
	tests := []struct {
		selected, correct []string
		want              bool
	}{
		{[]string{"A"}, []string{"A"}, true},
		{[]string{"C", "A"}, []string{"A", "C"}, true},
		{[]string{"A"}, []string{"A", "C"}, false},
		{[]string{"A", "B"}, []string{"A"}, false},
		{nil, nil, true},
	}

	for _, tt := range tests {
		if got := IsAnswerCorrect(tt.selected, tt.correct); got != tt.want {
			t.Errorf("IsAnswerCorrect(%v, %v) = %v, want %v", tt.selected, tt.correct, got, tt.want)
		}
	}
}

func TestShuffleChoices_LabelsAreFixed(t *testing.T) {
	q := sampleQuestion()
	want := []string{"A", "B", "C", "D", "E"}

	for i := 0; i < 20; i++ {
		display := q.ShuffleChoices(true)
		if len(display) != MaxChoices {
			t.Fatalf("got %d choices, want %d", len(display), MaxChoices)
		}
		for j, dc := range display {
			if dc.Label != want[j] {
				t.Errorf("position %d labelled %s, want %s", j, dc.Label, want[j])
			}
		}
	}
}
