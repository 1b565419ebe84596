package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxReviewRunes is the longest review text that is stored; longer model output is dropped
const MaxReviewRunes = 200

// TextClient is the external text-generation capability
type TextClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ReviewGenerator produces a batch of candidate review texts for a strategy
type ReviewGenerator interface {
	Generate(ctx context.Context, strategy string, batchSize int) ([]string, error)
}

type reviewGenerator struct {
	client TextClient
}

// NewReviewGenerator wraps a text client with the review prompt and output parsing
func NewReviewGenerator(client TextClient) ReviewGenerator {
	return &reviewGenerator{client: client}
}

func (g *reviewGenerator) Generate(ctx context.Context, strategy string, batchSize int) ([]string, error) {
	prompt := buildReviewPrompt(strategy, batchSize)
	raw, err := g.client.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return parseReviews(raw, batchSize)
}

func buildReviewPrompt(strategy string, batchSize int) string {
	return fmt.Sprintf(`You write short customer reviews that happy customers can post on public review sites.
Return ONLY a valid JSON array of %d strings, for example: ["review one", "review two"]

Rules:
- Each review is written in the first person by a different customer.
- Each review is at most 200 characters.
- Vary length, vocabulary and opening words; do not number the reviews.
- Do not invent prices, staff names or promotions unless the strategy mentions them.

Business review strategy:
%s`, batchSize, strategy)
}

// parseReviews accepts a JSON array of strings, optionally wrapped in a Markdown code fence.
// Non-string elements fail the whole batch. Blank strings and strings over MaxReviewRunes
// are dropped, and the result is capped at max.
func parseReviews(raw string, max int) ([]string, error) {
	body := stripCodeFence(raw)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array: %v", ErrParse, err)
	}

	reviews := make([]string, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '"' {
			return nil, fmt.Errorf("%w: element %d is not a string", ErrParse, i)
		}
		var text string
		if err := json.Unmarshal(item, &text); err != nil {
			return nil, fmt.Errorf("%w: element %d is not a string", ErrParse, i)
		}
		text = strings.TrimSpace(text)
		if text == "" || utf8.RuneCountInString(text) > MaxReviewRunes {
			continue
		}
		reviews = append(reviews, text)
		if len(reviews) == max {
			break
		}
	}

	if len(reviews) == 0 {
		return nil, fmt.Errorf("%w: no reviews in output", ErrParse)
	}
	return reviews, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
