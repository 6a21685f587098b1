// Package oracle calls the external LLM scoring endpoint and turns its
// free-text responses into validated scoring results. The endpoint is
// treated as adversarial input: anything outside the strict schema fails
// validation and is retried like a network error.
package oracle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"indexscore/internal/apperr"
	"indexscore/internal/retry"
)

const DefaultModel = "gemini-2.0-flash-exp"

// Generator is the raw text-in/text-out call to the model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator builds a Generator backed by the Gemini API.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("oracle api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &genaiGenerator{client: client, model: model}, nil
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Client wraps a Generator with the scoring contract: parse, validate,
// retry with exponential backoff, surface the last error on exhaustion.
type Client struct {
	Gen        Generator
	Model      string
	MaxRetries int
	Backoff    retry.Backoff
	Logger     *zap.Logger
}

func (c *Client) maxAttempts() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return 3
}

func (c *Client) backoff() retry.Backoff {
	if c.Backoff != nil {
		return c.Backoff
	}
	return retry.Exponential(time.Second)
}

// Score sends prompt to the oracle and returns a validated result. All
// attempts failing yields a terminal error wrapping the last failure.
func (c *Client) Score(ctx context.Context, prompt string) (*Result, error) {
	attempts := c.maxAttempts()
	var out *Result
	err := retry.Do(ctx, attempts, c.backoff(), func() error {
		text, err := c.Gen.Generate(ctx, prompt)
		if err != nil {
			if c.Logger != nil {
				c.Logger.Warn("oracle call failed", zap.Error(err))
			}
			return apperr.Transient("oracle call failed", err)
		}
		result, err := ParseResult(text)
		if err != nil {
			if c.Logger != nil {
				c.Logger.Warn("oracle response rejected", zap.Error(err))
			}
			return err
		}
		out = result
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scoring failed after %d attempts: %w", attempts, err)
	}
	return out, nil
}
