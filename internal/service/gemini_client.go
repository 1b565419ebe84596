package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reviewpilot/internal/config"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient generates text through the Gemini API
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	config  *genai.GenerateContentConfig
}

// NewGeminiClient creates a Gemini-backed text client. Output is constrained to a JSON array of strings.
func NewGeminiClient(ctx context.Context, cfg *config.AIConfig) (*GeminiClient, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	temperature := float32(0.9)
	return &GeminiClient{
		client:  client,
		model:   cfg.Models.Reviews,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		config: &genai.GenerateContentConfig{
			Temperature:      &temperature,
			ResponseMIMEType: "application/json",
			ResponseSchema: &genai.Schema{
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
	}, nil
}

func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

// OfflineClient stands in for Gemini in local development when no API key is set
type OfflineClient struct{}

var offlineReviews = []string{
	"Really glad I stopped by, friendly people and everything was exactly what I hoped for.",
	"Quick, easy and pleasant. I'll definitely be back soon.",
	"Great experience from start to finish. Would recommend to friends.",
	"The team went out of their way to help me. Five stars.",
	"Clean, welcoming and well run. Exactly what you want.",
	"Impressed by the attention to detail. Thank you!",
	"Everything was smooth and the staff were lovely.",
	"Solid service and a warm atmosphere. Happy customer here.",
	"Better than I expected, and I expected a lot.",
	"Such a nice visit. Will be telling my family about it.",
	"Professional, kind and fast. Can't ask for more.",
	"A real gem. Keep doing what you're doing.",
	"My go-to spot now. Consistently great.",
	"Friendly faces and great results every time.",
	"Left with a smile. Highly recommend.",
}

func (OfflineClient) GenerateText(_ context.Context, _ string) (string, error) {
	data, err := json.Marshal(offlineReviews)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
