package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/briefer/infrastructure/provider"
)

// Summarizer turns transcript text into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// IcebreakerWriter writes an icebreaker from a profile bio.
type IcebreakerWriter interface {
	GenerateIcebreaker(ctx context.Context, bio, pitchDeck, companyName string) (string, error)
}

// Generator builds prompts and calls the chat completion provider. Inputs
// are not validated here; callers check for blank text first.
type Generator struct {
	llm     provider.TextGenerator
	prompts Prompts
	logger  *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(llm provider.TextGenerator, prompts Prompts, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: llm, prompts: prompts, logger: logger}
}

// Summarize returns the first choice verbatim.
func (g *Generator) Summarize(ctx context.Context, text string) (string, error) {
	req, err := g.prompts.Summarize.Request(struct{ Text string }{Text: text})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return g.complete(ctx, "summarize", req)
}

// GenerateIcebreaker returns the first choice with surrounding whitespace
// removed.
func (g *Generator) GenerateIcebreaker(ctx context.Context, bio, pitchDeck, companyName string) (string, error) {
	req, err := g.prompts.Icebreaker.Request(struct {
		LinkedInBio string
		PitchDeck   string
		CompanyName string
	}{LinkedInBio: bio, PitchDeck: pitchDeck, CompanyName: companyName})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	text, err := g.complete(ctx, "icebreaker", req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *Generator) complete(ctx context.Context, task string, req provider.ChatCompletionRequest) (string, error) {
	resp, err := g.llm.ChatCompletion(ctx, req)
	if err != nil {
		g.logger.Error("generation failed", slog.String("task", task), slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	g.logger.Debug("generation complete",
		slog.String("task", task),
		slog.String("finish_reason", resp.FinishReason()),
		slog.Int("total_tokens", resp.Usage().TotalTokens()),
	)
	return resp.Content(), nil
}

var (
	_ Summarizer       = (*Generator)(nil)
	_ IcebreakerWriter = (*Generator)(nil)
)
