package valuation

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wavemarine/deckworth/internal/models"
)

// Generator is the narrative/valuation generation interface. Implementations
// never return Go errors for ordinary upstream trouble; the typed status on
// the result drives the fallback policy instead.
type Generator interface {
	// Generate runs one structured prompt and returns the raw text plus a
	// typed status.
	Generate(ctx context.Context, systemPrompt, userPayload string) GenerationResult

	// Enabled reports whether the generator has credentials at all.
	Enabled() bool
}

// GenerationResult is the outcome of a single generation call.
type GenerationResult struct {
	Text   string
	Status models.GenerationStatus
}

// GeneratorConfig holds OpenAI usage parameters.
type GeneratorConfig struct {
	APIKey        string
	Model         string
	Temperature   float32
	Timeout       time.Duration
	MaxRetries    int
	BaseDelay     time.Duration
	BackoffFactor float64
}

// DefaultGeneratorConfig returns sensible defaults for valuation prompts.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Model:         "gpt-4.1-mini",
		Temperature:   0.1, // valuation output should be as deterministic as the model allows
		Timeout:       15 * time.Second,
		MaxRetries:    2,
		BaseDelay:     600 * time.Millisecond,
		BackoffFactor: 1.8,
	}
}

// GeneratorConfigFromEnv creates config from environment variables. A
// secondary key takes precedence so keys can be rotated without downtime.
func GeneratorConfigFromEnv() GeneratorConfig {
	cfg := DefaultGeneratorConfig()

	cfg.APIKey = os.Getenv("OPENAI_API_KEY2")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.Model = model
	}

	return cfg
}

// OpenAIGenerator calls the OpenAI chat completion API with retry/backoff,
// retrying only rate limits.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    GeneratorConfig
	logger *slog.Logger
}

// NewOpenAIGenerator constructs a generator. An empty API key is allowed; the
// generator then reports itself disabled and every call returns an error
// status.
func NewOpenAIGenerator(cfg GeneratorConfig, logger *slog.Logger) *OpenAIGenerator {
	if logger == nil {
		logger = slog.Default()
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		client = openai.NewClient(cfg.APIKey)
	}

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether an API key was configured.
func (g *OpenAIGenerator) Enabled() bool {
	return g.client != nil
}

// Generate runs the prompt, retrying rate limits with exponential backoff and
// jitter. Other failures return immediately with an error status.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPayload string) GenerationResult {
	if !g.Enabled() {
		return GenerationResult{Status: models.GenerationError}
	}

	delay := g.cfg.BaseDelay

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		apiCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)

		start := time.Now()
		resp, err := g.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
			Model:       g.cfg.Model,
			Temperature: g.cfg.Temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPayload},
			},
		})
		cancel()

		g.logger.Info("valuation generation call complete",
			"model", g.cfg.Model,
			"attempt", attempt+1,
			"duration_ms", time.Since(start).Milliseconds(),
			"success", err == nil)

		if err == nil {
			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				return GenerationResult{Status: models.GenerationError}
			}
			return GenerationResult{
				Text:   resp.Choices[0].Message.Content,
				Status: models.GenerationOK,
			}
		}

		if !isRateLimited(err) {
			g.logger.Error("generation call failed", "error", err, "attempt", attempt+1)
			return GenerationResult{Status: models.GenerationError}
		}

		if attempt == g.cfg.MaxRetries {
			g.logger.Warn("rate limit exceeded, max retries reached",
				"attempts", g.cfg.MaxRetries+1, "error", err)
			return GenerationResult{Status: models.GenerationRateLimited}
		}

		// Jitter spreads concurrent retries off the same reset boundary.
		wait := delay + time.Duration(rand.Intn(250))*time.Millisecond
		g.logger.Warn("rate limited, retrying with backoff",
			"attempt", attempt+1, "delay_ms", wait.Milliseconds())

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return GenerationResult{Status: models.GenerationError}
		}

		delay = time.Duration(float64(delay) * g.cfg.BackoffFactor)
	}

	return GenerationResult{Status: models.GenerationError}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Too Many Requests") ||
		strings.Contains(strings.ToLower(msg), "rate limit") ||
		strings.Contains(strings.ToLower(msg), "quota")
}
