package session

import (
	"errors"
	"testing"

	"github.com/quizdeck/backend/internal/quiz"
)

const threeQuestions = `1. What is 2+2?
A. 3
B. 4
C. 5
Answer: B
Explanation: Basic arithmetic.

2. Which are even?
A. 1
B. 2
C. 3
D. 4
Answer: B, D
Explanation: Divisible by two.

3. Capital of France?
A. Paris
B. Rome
Answer: A
Explanation: It is Paris.
[Reference: atlas]`

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s := New(quiz.ParseQuestions(threeQuestions), opts)
	if s.Len() != 3 {
		t.Fatalf("expected 3 questions, got %d", s.Len())
	}
	return s
}

func TestNew_AssignsIDAndChoiceMaps(t *testing.T) {
	s := newSession(t, Options{ShuffleChoices: true, ShuffleQuestions: true})
	if s.ID == "" {
		t.Error("expected a session id")
	}
	for i, q := range s.Questions() {
		if len(q.ChoiceMap) != len(q.Choices) {
			t.Errorf("question %d: choice map not built", i)
		}
	}
}

func TestSubmit_Outcomes(t *testing.T) {
	s := newSession(t, Options{})

	out, err := s.Submit(0, []string{"B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != StatusCorrect || !out.Correct {
		t.Errorf("expected correct, got %+v", out)
	}
	if out.Explanation != "Basic arithmetic." {
		t.Errorf("explanation = %q", out.Explanation)
	}

	out, _ = s.Submit(1, []string{"B"})
	if out.Status != StatusIncorrect {
		t.Errorf("partial answer should be incorrect, got %s", out.Status)
	}
	if len(out.CorrectAnswers) != 2 {
		t.Errorf("expected both correct labels reported, got %v", out.CorrectAnswers)
	}

	out, _ = s.Submit(2, nil)
	if out.Status != StatusNoSelection || out.Correct {
		t.Errorf("empty selection should be no_selection, got %+v", out)
	}
	if _, answered := s.Result(2); answered {
		t.Error("empty selection must not be recorded")
	}
}

func TestSubmit_IndexOutOfRange(t *testing.T) {
	s := newSession(t, Options{})
	for _, idx := range []int{-1, 3, 100} {
		if _, err := s.Submit(idx, []string{"A"}); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Submit(%d) error = %v, want ErrIndexOutOfRange", idx, err)
		}
	}
}

func TestSubmit_ResubmitOverwrites(t *testing.T) {
	s := newSession(t, Options{})
	s.Submit(0, []string{"A"})
	s.Submit(0, []string{"B"})

	correct, answered := s.Result(0)
	if !answered || !correct {
		t.Errorf("expected latest result to win, got correct=%v answered=%v", correct, answered)
	}
}

func TestSubmit_ShuffledRoundTrip(t *testing.T) {
	s := newSession(t, Options{ShuffleChoices: true})
	for i := 0; i < s.Len(); i++ {
		if _, err := s.Reshuffle(i); err != nil {
			t.Fatal(err)
		}
		q, _ := s.Question(i)
		out, err := s.Submit(i, q.CorrectDisplayLabels())
		if err != nil {
			t.Fatal(err)
		}
		if !out.Correct {
			t.Errorf("question %d: mapped answer key graded %s", i, out.Status)
		}
	}
}

func TestFinish_Summary(t *testing.T) {
	s := newSession(t, Options{})
	s.Submit(0, []string{"B"})
	s.Submit(1, []string{"A"})

	summary := s.Finish()
	if summary.Total != 3 || summary.Correct != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.Percent != 33 {
		t.Errorf("percent = %d, want 33", summary.Percent)
	}

	want := []Status{StatusCorrect, StatusIncorrect, StatusMissed}
	for i, item := range summary.Items {
		if item.Status != want[i] {
			t.Errorf("item %d status = %s, want %s", i, item.Status, want[i])
		}
	}
}

func TestNavigation(t *testing.T) {
	s := newSession(t, Options{})

	if s.HasPrev() || !s.HasNext() {
		t.Error("first question should only allow next")
	}
	if s.Prev() {
		t.Error("Prev should fail at the first question")
	}
	if !s.Next() || !s.Next() {
		t.Fatal("expected to reach the last question")
	}
	if s.Current() != 2 || s.HasNext() {
		t.Errorf("expected to be on the last question, at %d", s.Current())
	}
	if s.Next() {
		t.Error("Next should fail at the last question")
	}
	if s.Show(5) || s.Current() != 2 {
		t.Error("out-of-range Show must not move focus")
	}
}

func TestReset(t *testing.T) {
	s := newSession(t, Options{})
	s.Submit(0, []string{"B"})
	s.Reset()

	if s.Len() != 0 {
		t.Errorf("expected no questions after reset, got %d", s.Len())
	}
	summary := s.Finish()
	if summary.Total != 0 || summary.Percent != 0 {
		t.Errorf("unexpected summary after reset: %+v", summary)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.correct, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}
