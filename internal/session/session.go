package session

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/quiz"
)

var ErrIndexOutOfRange = errors.New("question index out of range")

type Status string

const (
	StatusNoSelection Status = "no_selection"
	StatusCorrect     Status = "correct"
	StatusIncorrect   Status = "incorrect"
	StatusMissed      Status = "missed"
)

// Options controls how questions are presented.
type Options struct {
	ShuffleQuestions bool
	ShuffleChoices   bool
}

// Outcome is the result of one submission.
type Outcome struct {
	Index          int      `json:"index"`
	Status         Status   `json:"status"`
	Correct        bool     `json:"correct"`
	CorrectAnswers []string `json:"correct_answers,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
}

type SummaryItem struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Status Status `json:"status"`
}

type Summary struct {
	Total   int           `json:"total"`
	Correct int           `json:"correct"`
	Percent int           `json:"percent"`
	Items   []SummaryItem `json:"items"`
}

// Session owns the state of one quiz run: the question list, the current
// position and the per-question results. All methods are safe for
// concurrent use; a reshuffle and the grading that depends on it never
// interleave.
type Session struct {
	ID string

	mu        sync.Mutex
	opts      Options
	questions []*quiz.Question
	current   int
	results   map[int]bool
}

// New starts a session over questions. Question order is permuted once
// when ShuffleQuestions is set; choices are always relabeled so every
// question has a choice map before it can be graded.
func New(questions []*quiz.Question, opts Options) *Session {
	qs := make([]*quiz.Question, len(questions))
	copy(qs, questions)
	if opts.ShuffleQuestions {
		rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	}
	for _, q := range qs {
		q.ShuffleChoices(opts.ShuffleChoices)
	}

	return &Session{
		ID:        uuid.NewString(),
		opts:      opts,
		questions: qs,
		results:   make(map[int]bool),
	}
}

func (s *Session) Options() Options {
	return s.opts
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// Questions returns the questions in presentation order.
func (s *Session) Questions() []*quiz.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*quiz.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Session) Question(index int) (*quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return nil, err
	}
	return s.questions[index], nil
}

// Current returns the index of the question in focus.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Show moves focus to index. Out-of-range indexes leave focus unchanged
// and return false.
func (s *Session) Show(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkIndex(index) != nil {
		return false
	}
	s.current = index
	return true
}

func (s *Session) Next() bool {
	return s.Show(s.Current() + 1)
}

func (s *Session) Prev() bool {
	return s.Show(s.Current() - 1)
}

// HasPrev and HasNext mirror the enabled state of navigation controls.
func (s *Session) HasPrev() bool {
	return s.Current() > 0
}

func (s *Session) HasNext() bool {
	return s.Current() < s.Len()-1
}

// Reshuffle relabels one question's choices. Results already recorded for
// it are kept; selections made against the old labels no longer map.
func (s *Session) Reshuffle(index int) ([]quiz.DisplayChoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return nil, err
	}
	return s.questions[index].ShuffleChoices(s.opts.ShuffleChoices), nil
}

// Submit grades a selection of display labels for the question at index.
// An empty selection is reported as StatusNoSelection and is not recorded.
// A graded submission overwrites any earlier result for the same index.
func (s *Session) Submit(index int, selected []string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return Outcome{}, err
	}

	if len(selected) == 0 {
		return Outcome{Index: index, Status: StatusNoSelection}, nil
	}

	q := s.questions[index]
	correct := q.Check(selected)
	s.results[index] = correct

	status := StatusIncorrect
	if correct {
		status = StatusCorrect
	}
	return Outcome{
		Index:          index,
		Status:         status,
		Correct:        correct,
		CorrectAnswers: q.CorrectDisplayLabels(),
		Explanation:    q.Explanation,
	}, nil
}

// Result reports the recorded result for index, if any.
func (s *Session) Result(index int) (correct, answered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	correct, answered = s.results[index]
	return correct, answered
}

// Finish computes the score. Questions never graded count as missed.
func (s *Session) Finish() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		Total: len(s.questions),
		Items: make([]SummaryItem, len(s.questions)),
	}
	for i, q := range s.questions {
		status := StatusMissed
		if correct, ok := s.results[i]; ok {
			status = StatusIncorrect
			if correct {
				status = StatusCorrect
				summary.Correct++
			}
		}
		summary.Items[i] = SummaryItem{Index: i, Text: q.Text, Status: status}
	}
	summary.Percent = Percent(summary.Correct, summary.Total)

	return summary
}

// Reset drops every question and result.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = nil
	s.results = make(map[int]bool)
	s.current = 0
}

// Percent is correct/total as a rounded percentage; 0 when total is 0.
func Percent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.questions))
	}
	return nil
}
