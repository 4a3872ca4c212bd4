// Package ai generates practice questions with an OpenAI-compatible chat
// completions API and grades free-text answers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/parser"
)

// Defaults for the Groq endpoint.
const (
	DefaultURL         = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultTimeout     = 30 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

const systemPrompt = "You are an educational assistant that creates practice test questions from study materials."

// Config configures a Client.
type Config struct {
	URL         string
	Model       string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Client asks a chat completions endpoint for question/answer pairs.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a client. Zero fields of cfg take the package defaults.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateQuestions returns exactly count pairs or an error. Extra pairs in
// the reply are dropped.
func (c *Client) GenerateQuestions(ctx context.Context, cards []domain.CardContent, count int) ([]domain.GeneratedQuestion, error) {
	if len(cards) == 0 || count <= 0 {
		return nil, fmt.Errorf("nothing to generate from")
	}
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(cards, count)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", c.cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}

	pairs, err := parser.Parse(strings.NewReader(out.Choices[0].Message.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	c.log.Debug("questions generated",
		zap.String("model", c.cfg.Model),
		zap.Int("requested", count),
		zap.Int("received", len(pairs)),
		zap.Duration("took", time.Since(start)),
	)
	if len(pairs) < count {
		return nil, fmt.Errorf("expected %d questions, got %d", count, len(pairs))
	}

	questions := make([]domain.GeneratedQuestion, count)
	for i := range questions {
		questions[i] = domain.GeneratedQuestion{Question: pairs[i].Front, CorrectAnswer: pairs[i].Back}
	}
	return questions, nil
}

func buildPrompt(cards []domain.CardContent, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an educational assistant that creates creative, exam-style practice questions.\n")
	fmt.Fprintf(&b, "Based on the following flashcards, generate %d diverse practice test questions.\n\n", count)
	b.WriteString("Requirements:\n")
	b.WriteString("- Test deep understanding and application of the concepts, not just memorization\n")
	b.WriteString("- Vary formats (short answer, conceptual, scenario-based, fill-in-the-blank, etc.)\n")
	b.WriteString("- Keep each correct answer concise\n\n")
	b.WriteString("Flashcards:\n")
	for _, c := range cards {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", c.Front, c.Back)
	}
	b.WriteString("\nOutput format (MUST follow exactly, no extra text before or after):\n")
	b.WriteString("Q: <question 1 text>\nA: <answer 1 text>\nQ: <question 2 text>\nA: <answer 2 text>\n")
	b.WriteString("... and so on for all questions.")
	return b.String()
}
