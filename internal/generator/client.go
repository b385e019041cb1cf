package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/quizdeck/backend/internal/config"
	"github.com/quizdeck/backend/internal/quiz"
	"go.uber.org/zap"
)

// LLMClient is the interface all generator backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator asks an LLM to author quiz text and parses it with the same
// parser used for uploaded files.
type Generator struct {
	llm    LLMClient
	model  string
	parser *quiz.Parser
	log    *zap.Logger
}

// NewGenerator picks a backend from cfg.Mode: "api", "cli" or "mock".
func NewGenerator(cfg config.GeneratorConfig, parser *quiz.Parser, log *zap.Logger) *Generator {
	var llm LLMClient
	model := "mock"

	switch cfg.Mode {
	case "cli":
		llm = NewCLIClient(cfg.CLIPath)
		model = "claude-cli"
		log.Info("generator using Claude CLI", zap.String("path", cfg.CLIPath))
	case "api":
		model = cfg.Model
		llm = NewAPIClient(cfg.APIKey, model, log)
		log.Info("generator using Anthropic API", zap.String("model", model))
	default:
		llm = NewMockClient()
		log.Info("generator using mock data")
	}

	return New(llm, model, parser, log)
}

// New wraps an existing client.
func New(llm LLMClient, model string, parser *quiz.Parser, log *zap.Logger) *Generator {
	return &Generator{llm: llm, model: model, parser: parser, log: log}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateQuiz requests count questions about topic.
func (g *Generator) GenerateQuiz(ctx context.Context, topic string, count int) (*GeneratedQuiz, *LLMResponse, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, nil, fmt.Errorf("topic is required")
	}

	count = ClampCount(count)
	resp, err := g.llm.Generate(ctx, QuizSystemPrompt(), BuildQuizUserPrompt(topic, count))
	if err != nil {
		return nil, nil, fmt.Errorf("generate quiz: %w", err)
	}

	generated, err := ParseResponse(resp.Content, g.parser)
	if err != nil {
		return nil, resp, fmt.Errorf("parse quiz response: %w", err)
	}

	if len(generated.Questions) != count {
		g.log.Warn("generated question count differs from request",
			zap.Int("requested", count), zap.Int("parsed", len(generated.Questions)))
	}
	if dropped := generated.Stats.Dropped(); dropped > 0 {
		g.log.Warn("generated blocks dropped by parser", zap.Int("dropped", dropped))
	}

	return generated, resp, nil
}

// ── APIClient: Anthropic SDK ──────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
	log    *zap.Logger
}

func NewAPIClient(apiKey, model string, log *zap.Logger) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &APIClient{client: &client, model: model, log: log}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Info("retrying Anthropic API call", zap.Duration("after", sleepDuration), zap.Int("attempt", attempt+1))
			select {
			case <-time.After(sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		c.log.Warn("Anthropic API attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient: Local Development ──────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      "```text\n" + buildMockQuiz() + "\n```",
		PromptTokens: 400,
		OutputTokens: 900,
	}, nil
}

func buildMockQuiz() string {
	topics := []string{"photosynthesis", "plate tectonics", "the water cycle", "prime numbers", "supply and demand"}
	labels := []string{"A", "B", "C", "D"}

	var b strings.Builder
	for i, topic := range topics {
		correct := labels[i%len(labels)]
		fmt.Fprintf(&b, "%d. [Mock] Which statement about %s is accurate?\n", i+1, topic)
		for _, l := range labels {
			verdict := "inaccurate"
			if l == correct {
				verdict = "accurate"
			}
			fmt.Fprintf(&b, "%s. [Mock] An %s claim about %s.\n", l, verdict, topic)
		}
		fmt.Fprintf(&b, "Answer: %s\n", correct)
		fmt.Fprintf(&b, "Explanation: [Mock] Choice %s is the only accurate claim about %s.\n\n", correct, topic)
	}
	return strings.TrimSpace(b.String())
}
