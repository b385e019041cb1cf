package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quizdeck/backend/internal/config"
	"github.com/quizdeck/backend/internal/quiz"
	"go.uber.org/zap"
)

type stubClient struct {
	content string
	err     error

	gotSystem string
	gotUser   string
}

func (s *stubClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	s.gotSystem, s.gotUser = systemPrompt, userPrompt
	if s.err != nil {
		return nil, s.err
	}
	return &LLMResponse{Content: s.content, PromptTokens: 10, OutputTokens: 20}, nil
}

func TestNewGenerator_DefaultsToMock(t *testing.T) {
	g := NewGenerator(config.GeneratorConfig{Mode: "unknown"}, quiz.NewParser(quiz.ParseOptions{}), zap.NewNop())
	if g.ModelName() != "mock" {
		t.Errorf("expected mock model, got %q", g.ModelName())
	}
	if _, ok := g.llm.(*MockClient); !ok {
		t.Errorf("expected *MockClient, got %T", g.llm)
	}
}

func TestGenerateQuiz_Mock(t *testing.T) {
	g := New(NewMockClient(), "mock", quiz.NewParser(quiz.ParseOptions{}), zap.NewNop())

	generated, resp, err := g.GenerateQuiz(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp.OutputTokens == 0 {
		t.Error("expected token usage from mock")
	}
	if len(generated.Questions) != 5 {
		t.Fatalf("expected 5 mock questions, got %d", len(generated.Questions))
	}
	for i, q := range generated.Questions {
		if !strings.HasPrefix(q.Text, "[Mock]") {
			t.Errorf("question %d: expected [Mock] prefix, got %q", i+1, q.Text)
		}
		if got := ClassifyQuality(ComputeStructuralScore(q).Score()); got != "passed" {
			t.Errorf("question %d: expected mock quality 'passed', got %q", i+1, got)
		}
	}
}

func TestGenerateQuiz_PromptsIncludeTopic(t *testing.T) {
	stub := &stubClient{content: validQuizText(3)}
	g := New(stub, "stub", quiz.NewParser(quiz.ParseOptions{}), zap.NewNop())

	if _, _, err := g.GenerateQuiz(context.Background(), "volcanoes", 3); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !strings.Contains(stub.gotUser, "volcanoes") {
		t.Errorf("user prompt missing topic: %q", stub.gotUser)
	}
	if stub.gotSystem != QuizSystemPrompt() {
		t.Error("expected shared system prompt")
	}
}

func TestGenerateQuiz_EmptyTopic(t *testing.T) {
	stub := &stubClient{}
	g := New(stub, "stub", quiz.NewParser(quiz.ParseOptions{}), zap.NewNop())

	if _, _, err := g.GenerateQuiz(context.Background(), "   ", 3); err == nil {
		t.Fatal("expected error for empty topic")
	}
	if stub.gotUser != "" {
		t.Error("LLM should not be called for an empty topic")
	}
}

func TestGenerateQuiz_ClientError(t *testing.T) {
	boom := errors.New("boom")
	g := New(&stubClient{err: boom}, "stub", quiz.NewParser(quiz.ParseOptions{}), zap.NewNop())

	_, _, err := g.GenerateQuiz(context.Background(), "topic", 3)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got: %v", err)
	}
}

func TestGenerateQuiz_InvalidResponse(t *testing.T) {
	g := New(&stubClient{content: "no quiz here"}, "stub", quiz.NewParser(quiz.ParseOptions{}), zap.NewNop())

	_, resp, err := g.GenerateQuiz(context.Background(), "topic", 3)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got: %v", err)
	}
	if resp == nil {
		t.Error("expected raw response to be returned alongside a validation error")
	}
}
