package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/quizdeck/backend/internal/quiz"
	"github.com/quizdeck/backend/internal/session"
)

// Options configures the terminal runner.
type Options struct {
	NoColor bool
}

// Model runs a quiz session in the terminal with Bubble Tea.
type Model struct {
	sess     *session.Session
	keys     keyMap
	help     help.Model
	cursor   int
	selected map[string]bool
	outcomes map[int]session.Outcome
	summary  *session.Summary
	notice   string
	noColor  bool
}

// NewModel constructs a runner over sess, starting at its current question.
func NewModel(sess *session.Session, opts Options) Model {
	m := Model{
		sess:     sess,
		keys:     defaultKeys(),
		help:     help.New(),
		selected: make(map[string]bool),
		outcomes: make(map[int]session.Outcome),
		noColor:  opts.NoColor,
	}
	m.syncNavigation()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Summary is the final score once the quiz is finished, nil before.
func (m Model) Summary() *session.Summary {
	return m.summary
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.summary != nil {
		return m, nil
	}

	index := m.sess.Current()
	q, err := m.sess.Question(index)
	if err != nil {
		return m, tea.Quit
	}
	choices := q.DisplayOrder()
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(choices)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(choices) {
			m.toggle(choices[m.cursor].Label, q.MultiSelect())
		}
	case key.Matches(msg, m.keys.Submit):
		outcome, err := m.sess.Submit(index, m.selectedLabels(choices))
		if err != nil {
			m.notice = err.Error()
			break
		}
		if outcome.Status == session.StatusNoSelection {
			m.notice = "Select an answer first."
			break
		}
		m.outcomes[index] = outcome
	case key.Matches(msg, m.keys.Next):
		if m.sess.Next() {
			m.resetQuestion()
		}
	case key.Matches(msg, m.keys.Prev):
		if m.sess.Prev() {
			m.resetQuestion()
		}
	case key.Matches(msg, m.keys.Shuffle):
		if _, err := m.sess.Reshuffle(index); err == nil {
			delete(m.outcomes, index)
			m.resetQuestion()
		}
	case key.Matches(msg, m.keys.Finish):
		summary := m.sess.Finish()
		m.summary = &summary
	}
	return m, nil
}

// toggle flips a label. Single-answer questions behave like radio buttons.
func (m *Model) toggle(label string, multi bool) {
	if m.selected[label] {
		delete(m.selected, label)
		return
	}
	if !multi {
		m.selected = make(map[string]bool)
	}
	m.selected[label] = true
}

func (m Model) selectedLabels(choices []quiz.DisplayChoice) []string {
	var labels []string
	for _, c := range choices {
		if m.selected[c.Label] {
			labels = append(labels, c.Label)
		}
	}
	return labels
}

func (m *Model) resetQuestion() {
	m.cursor = 0
	m.selected = make(map[string]bool)
	m.syncNavigation()
}

// syncNavigation disables prev/next at the ends of the quiz, which also
// hides them from the help line.
func (m *Model) syncNavigation() {
	m.keys.Prev.SetEnabled(m.sess.HasPrev())
	m.keys.Next.SetEnabled(m.sess.HasNext())
}

func (m Model) View() string {
	if m.summary != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			renderSummary(*m.summary, m.noColor),
			m.help.ShortHelpView([]key.Binding{m.keys.Quit}),
		)
	}

	index := m.sess.Current()
	q, err := m.sess.Question(index)
	if err != nil {
		return "No questions loaded.\n"
	}

	var outcome *session.Outcome
	if o, ok := m.outcomes[index]; ok {
		outcome = &o
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(index, m.sess.Len(), q.MultiSelect(), m.noColor),
		renderQuestion(q.Text, m.noColor),
		renderChoices(q.DisplayOrder(), m.cursor, m.selected, outcome, m.noColor),
		renderOutcome(outcome, m.noColor),
		renderNotice(m.notice, m.noColor),
		m.help.View(m.keys),
	)
}
