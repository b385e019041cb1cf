package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quizdeck/backend/internal/config"
	"github.com/quizdeck/backend/internal/generator"
	"github.com/quizdeck/backend/internal/metrics"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/quiz"
	"github.com/quizdeck/backend/internal/session"
	"github.com/quizdeck/backend/internal/source"
	"github.com/quizdeck/backend/internal/voice"
	"go.uber.org/zap"
)

var (
	ErrNoSession    = errors.New("no quiz loaded")
	ErrBankDisabled = errors.New("question bank is disabled")
	ErrNoQuestions  = errors.New("no questions found")
	ErrNoSource     = errors.New("exactly one of text, location or file_id is required")
)

// Service is the quiz controller. It owns at most one active session;
// loading a quiz replaces it.
type Service struct {
	store     *Store
	generator *generator.Generator
	metrics   *metrics.Metrics
	defaults  config.QuizConfig
	log       *zap.Logger

	mu      sync.Mutex
	current *session.Session
	stats   *quiz.ParseStats
}

// NewService wires the controller. store may be nil when the bank is
// disabled.
func NewService(store *Store, gen *generator.Generator, m *metrics.Metrics, defaults config.QuizConfig, log *zap.Logger) *Service {
	log.Info("quiz service configured",
		zap.Bool("bank", store != nil),
		zap.Bool("shuffle_questions", defaults.ShuffleQuestions),
		zap.Bool("shuffle_choices", defaults.ShuffleChoices),
		zap.Bool("exclude_references", defaults.ExcludeReferences),
		zap.String("quiz_directory", defaults.Directory),
	)
	return &Service{
		store:     store,
		generator: gen,
		metrics:   m,
		defaults:  defaults,
		log:       log,
	}
}

func (s *Service) BankEnabled() bool {
	return s.store != nil
}

// ── Parsing ──────────────────────────────────────────────

func (s *Service) parser(excludeReferences *bool) *quiz.Parser {
	return quiz.NewParser(quiz.ParseOptions{
		ExcludeReferences: boolOr(excludeReferences, s.defaults.ExcludeReferences),
	})
}

func (s *Service) Parse(req models.ParseRequest) *models.ParseResponse {
	questions, stats := s.parser(req.ExcludeReferences).ParseWithStats(req.Text)
	s.metrics.ObserveParse(stats)
	return &models.ParseResponse{Questions: questions, Stats: stats}
}

// ── Session Lifecycle ────────────────────────────────────

// LoadQuiz parses the requested source and starts a new session over it.
func (s *Service) LoadQuiz(ctx context.Context, req models.LoadQuizRequest) (*models.QuizView, error) {
	questions, stats, err := s.resolveQuestions(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	sess := session.New(questions, session.Options{
		ShuffleQuestions: boolOr(req.ShuffleQuestions, s.defaults.ShuffleQuestions),
		ShuffleChoices:   boolOr(req.ShuffleChoices, s.defaults.ShuffleChoices),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
	s.stats = stats

	s.log.Info("quiz loaded",
		zap.String("session_id", sess.ID),
		zap.Int("questions", sess.Len()),
		zap.Bool("shuffle_questions", sess.Options().ShuffleQuestions),
		zap.Bool("shuffle_choices", sess.Options().ShuffleChoices),
	)
	return s.view(), nil
}

func (s *Service) resolveQuestions(ctx context.Context, req models.LoadQuizRequest) ([]*quiz.Question, *quiz.ParseStats, error) {
	sources := 0
	for _, set := range []bool{req.Text != "", req.Location != "", req.FileID != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, nil, ErrNoSource
	}

	if req.FileID != nil {
		if s.store == nil {
			return nil, nil, ErrBankDisabled
		}
		questions, err := s.store.LoadQuestions(ctx, *req.FileID)
		if err != nil {
			return nil, nil, err
		}
		return questions, nil, nil
	}

	text := req.Text
	if req.Location != "" {
		loaded, err := source.LoadWithin(ctx, s.defaults.Directory, req.Location)
		if err != nil {
			return nil, nil, err
		}
		text = loaded
	}

	questions, stats := s.parser(req.ExcludeReferences).ParseWithStats(text)
	s.metrics.ObserveParse(stats)
	if stats.Dropped() > 0 {
		s.log.Debug("quiz blocks dropped",
			zap.Int("short", stats.DroppedShort),
			zap.Int("no_choices", stats.DroppedNoChoices),
			zap.Int("duplicate", stats.DroppedDuplicate),
		)
	}
	return questions, &stats, nil
}

func (s *Service) Quiz() (*models.QuizView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	return s.view(), nil
}

// Reset discards the active session.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Reset()
		s.log.Info("quiz reset", zap.String("session_id", s.current.ID))
	}
	s.current = nil
	s.stats = nil
}

// ── Grading ──────────────────────────────────────────────

func (s *Service) Submit(index int, selected []string) (*session.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	return s.submit(index, selected)
}

func (s *Service) submit(index int, selected []string) (*session.Outcome, error) {
	outcome, err := s.current.Submit(index, selected)
	if err != nil {
		return nil, err
	}
	s.metrics.Submissions.WithLabelValues(string(outcome.Status)).Inc()
	return &outcome, nil
}

func (s *Service) Reshuffle(index int) (*models.QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	if _, err := s.current.Reshuffle(index); err != nil {
		return nil, err
	}
	v := s.questionView(index)
	return &v, nil
}

func (s *Service) Finish() (*session.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	summary := s.current.Finish()
	s.log.Info("quiz finished",
		zap.String("session_id", s.current.ID),
		zap.Int("correct", summary.Correct),
		zap.Int("total", summary.Total),
		zap.Int("percent", summary.Percent),
	)
	return &summary, nil
}

// ── Voice ────────────────────────────────────────────────

func (s *Service) ReadAloud(index int) (*models.ReadAloudResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	q, err := s.current.Question(index)
	if err != nil {
		return nil, err
	}
	return &models.ReadAloudResponse{Index: index, Text: voice.ReadAloud(q)}, nil
}

// Voice matches a spoken answer to a display label and, on a match,
// submits it as a single selection.
func (s *Service) Voice(index int, spoken string) (*models.VoiceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	q, err := s.current.Question(index)
	if err != nil {
		return nil, err
	}

	label, ok := voice.MatchSpoken(q, spoken)
	if !ok {
		return &models.VoiceResponse{Matched: false}, nil
	}
	outcome, err := s.submit(index, []string{label})
	if err != nil {
		return nil, err
	}
	return &models.VoiceResponse{Matched: true, Label: label, Outcome: outcome}, nil
}

// ── Export ───────────────────────────────────────────────

func (s *Service) Export() (*models.ExportEnvelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSession
	}
	return &models.ExportEnvelope{
		Version:    1,
		ExportedAt: time.Now().UTC(),
		Questions:  s.current.Questions(),
	}, nil
}

// ── Question Bank ────────────────────────────────────────

func (s *Service) SaveQuizFile(ctx context.Context, req models.SaveQuizFileRequest) (*models.SaveQuizFileResponse, error) {
	if (req.Text == "") == (req.Location == "") {
		return nil, ErrNoSource
	}
	if s.store == nil {
		return nil, ErrBankDisabled
	}

	text, origin := req.Text, ""
	if req.Location != "" {
		loaded, err := source.LoadWithin(ctx, s.defaults.Directory, req.Location)
		if err != nil {
			return nil, err
		}
		text, origin = loaded, req.Location
	}

	questions, stats := s.parser(nil).ParseWithStats(text)
	s.metrics.ObserveParse(stats)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultFileName(origin)
	}

	file, err := s.store.SaveQuizFile(ctx, name, origin, questions)
	if err != nil {
		return nil, fmt.Errorf("save quiz file: %w", err)
	}
	s.log.Info("quiz file saved", zap.Int64("file_id", file.ID), zap.Int("questions", file.QuestionCount))
	return &models.SaveQuizFileResponse{File: *file, Stats: stats}, nil
}

func (s *Service) ListQuizFiles(ctx context.Context, limit, offset int) ([]models.QuizFile, error) {
	if s.store == nil {
		return nil, ErrBankDisabled
	}
	return s.store.ListQuizFiles(ctx, limit, offset)
}

func (s *Service) GetQuizFile(ctx context.Context, id int64) (*models.QuizFile, error) {
	if s.store == nil {
		return nil, ErrBankDisabled
	}
	return s.store.GetQuizFile(ctx, id)
}

func defaultFileName(origin string) string {
	if origin == "" {
		return "Untitled quiz"
	}
	if i := strings.LastIndexAny(origin, "/\\"); i >= 0 && i < len(origin)-1 {
		return origin[i+1:]
	}
	return origin
}

// ── Generation ───────────────────────────────────────────

func (s *Service) Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	if req.Save && s.store == nil {
		return nil, ErrBankDisabled
	}

	start := time.Now()
	generated, llmResp, err := s.generator.GenerateQuiz(ctx, req.Topic, req.Count)
	if err != nil {
		result := "error"
		var ve *generator.ValidationError
		if errors.As(err, &ve) {
			result = "invalid"
		}
		s.metrics.Generations.WithLabelValues(result).Inc()
		s.log.Warn("quiz generation failed", zap.String("topic", req.Topic), zap.String("result", result), zap.Error(err))
		return nil, err
	}
	s.metrics.Generations.WithLabelValues("ok").Inc()
	s.metrics.ObserveParse(generated.Stats)

	s.log.Info("quiz generated",
		zap.String("topic", req.Topic),
		zap.Int("questions", len(generated.Questions)),
		zap.Int("prompt_tokens", llmResp.PromptTokens),
		zap.Int("output_tokens", llmResp.OutputTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	resp := &models.GenerateResponse{
		Text:      generated.Text,
		Questions: generated.Questions,
		Quality:   make([]models.QualityReport, len(generated.Questions)),
		Model:     s.generator.ModelName(),
	}
	for i, q := range generated.Questions {
		score := generator.ComputeStructuralScore(q).Score()
		resp.Quality[i] = models.QualityReport{
			Index:          i,
			Score:          score,
			Classification: generator.ClassifyQuality(score),
		}
	}

	if req.Save {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = "Generated: " + strings.TrimSpace(req.Topic)
		}
		file, err := s.store.SaveQuizFile(ctx, name, "generator:"+s.generator.ModelName(), generated.Questions)
		if err != nil {
			return nil, fmt.Errorf("save generated quiz: %w", err)
		}
		resp.FileID = &file.ID
	}

	return resp, nil
}

// ── Views ────────────────────────────────────────────────

// view must be called with s.mu held.
func (s *Service) view() *models.QuizView {
	v := &models.QuizView{
		SessionID: s.current.ID,
		Current:   s.current.Current(),
		Total:     s.current.Len(),
		Questions: make([]models.QuestionView, s.current.Len()),
		Stats:     s.stats,
	}
	for i := range v.Questions {
		v.Questions[i] = s.questionView(i)
	}
	return v
}

func (s *Service) questionView(index int) models.QuestionView {
	q, _ := s.current.Question(index)
	v := models.QuestionView{
		Index:       index,
		Text:        q.Text,
		MultiSelect: q.MultiSelect(),
		Choices:     q.DisplayOrder(),
	}
	if correct, answered := s.current.Result(index); answered {
		v.Answered = true
		v.Correct = &correct
	}
	return v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
