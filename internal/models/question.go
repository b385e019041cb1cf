package models

import (
	"time"

	"github.com/quizdeck/backend/internal/quiz"
	"github.com/quizdeck/backend/internal/session"
)

// ── Quiz Bank ──────────────────────────────────────────

type QuizFile struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Source        string    `json:"source,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ── Request Types ─────────────────────────────────────

type ParseRequest struct {
	Text              string `json:"text"`
	ExcludeReferences *bool  `json:"exclude_references,omitempty"`
}

// LoadQuizRequest starts a session from exactly one of Text, Location
// (path or URL) or FileID (a bank entry). Nil flags fall back to config.
type LoadQuizRequest struct {
	Text              string `json:"text,omitempty"`
	Location          string `json:"location,omitempty"`
	FileID            *int64 `json:"file_id,omitempty"`
	ShuffleQuestions  *bool  `json:"shuffle_questions,omitempty"`
	ShuffleChoices    *bool  `json:"shuffle_choices,omitempty"`
	ExcludeReferences *bool  `json:"exclude_references,omitempty"`
}

type SubmitRequest struct {
	Selected []string `json:"selected"`
}

type VoiceRequest struct {
	Spoken string `json:"spoken"`
}

type SaveQuizFileRequest struct {
	Name     string `json:"name"`
	Text     string `json:"text,omitempty"`
	Location string `json:"location,omitempty"`
}

type GenerateRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
	Save  bool   `json:"save,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ── Response Types ────────────────────────────────────

type ParseResponse struct {
	Questions []*quiz.Question `json:"questions"`
	Stats     quiz.ParseStats  `json:"stats"`
}

// QuestionView is a question as served to a client: display choices only,
// never the answer key.
type QuestionView struct {
	Index       int                  `json:"index"`
	Text        string               `json:"text"`
	MultiSelect bool                 `json:"multi_select"`
	Choices     []quiz.DisplayChoice `json:"choices"`
	Answered    bool                 `json:"answered"`
	Correct     *bool                `json:"correct,omitempty"`
}

type QuizView struct {
	SessionID string           `json:"session_id"`
	Current   int              `json:"current"`
	Total     int              `json:"total"`
	Questions []QuestionView   `json:"questions"`
	Stats     *quiz.ParseStats `json:"stats,omitempty"`
}

type ReadAloudResponse struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type VoiceResponse struct {
	Matched bool             `json:"matched"`
	Label   string           `json:"label,omitempty"`
	Outcome *session.Outcome `json:"outcome,omitempty"`
}

type SaveQuizFileResponse struct {
	File  QuizFile        `json:"file"`
	Stats quiz.ParseStats `json:"stats"`
}

type QualityReport struct {
	Index          int     `json:"index"`
	Score          float64 `json:"score"`
	Classification string  `json:"classification"`
}

type GenerateResponse struct {
	Text      string           `json:"text"`
	Questions []*quiz.Question `json:"questions"`
	Quality   []QualityReport  `json:"quality"`
	Model     string           `json:"model"`
	FileID    *int64           `json:"file_id,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ── Export Types ──────────────────────────────────────

type ExportEnvelope struct {
	Version    int              `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Questions  []*quiz.Question `json:"questions" yaml:"questions"`
}
