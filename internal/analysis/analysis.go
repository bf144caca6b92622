// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis turns paper records into language-model prompts and
// returns the model's structured commentary: a six-part analysis of one
// paper, an answer grounded in a few papers, or a literature review.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tmc/langchaingo/llms"

	"github.com/pdiddy/research-assistant/internal/observability"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrModelUnavailable is wrapped by every error caused by the model backend
// failing, timing out, or returning no text.
var ErrModelUnavailable = errors.New("model unavailable")

const defaultMemoSize = 100

// Operation names used in metrics labels.
const (
	opAnalyze = "analyze"
	opAnswer  = "answer"
	opReview  = "review"
)

// Engine builds prompts and calls the model backend. Identical prompts may be
// served from a bounded LRU memo. An Engine is safe for concurrent use.
type Engine struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
	memo        *lru.Cache[string, string]

	// Metrics is optional.
	Metrics *observability.Metrics
}

// NewEngine wraps model. cfg.MemoSize of zero uses the default capacity
// (100); a negative size disables the memo.
func NewEngine(model llms.Model, cfg types.ModelConfig) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("model backend is required")
	}

	e := &Engine{
		model:       model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}

	size := cfg.MemoSize
	if size == 0 {
		size = defaultMemoSize
	}
	if size > 0 {
		memo, err := lru.New[string, string](size)
		if err != nil {
			return nil, fmt.Errorf("creating memo: %w", err)
		}
		e.memo = memo
	}
	return e, nil
}

// AnalyzePaper returns a copy of paper with Analysis set to the model's
// detailed analysis. The caller's record is left unchanged.
func (e *Engine) AnalyzePaper(ctx context.Context, paper types.Paper) (types.Paper, error) {
	prompt, err := AnalysisPrompt(paper)
	if err != nil {
		return types.Paper{}, fmt.Errorf("rendering analysis prompt: %w", err)
	}

	text, err := e.generate(ctx, opAnalyze, prompt)
	if err != nil {
		return types.Paper{}, fmt.Errorf("analyzing paper %s: %w", paper.ID, err)
	}

	analyzed := paper
	analyzed.Authors = slices.Clone(paper.Authors)
	analyzed.Analysis = text
	return analyzed, nil
}

// SynthesizeAnswer answers question grounded in the first MaxAnswerPapers papers.
func (e *Engine) SynthesizeAnswer(ctx context.Context, question string, papers []types.Paper) (string, error) {
	prompt, err := AnswerPrompt(question, papers)
	if err != nil {
		return "", fmt.Errorf("rendering answer prompt: %w", err)
	}
	return e.generate(ctx, opAnswer, prompt)
}

// SynthesizeReview writes a literature review over the first MaxReviewPapers papers.
func (e *Engine) SynthesizeReview(ctx context.Context, papers []types.Paper) (string, error) {
	prompt, err := ReviewPrompt(papers)
	if err != nil {
		return "", fmt.Errorf("rendering review prompt: %w", err)
	}
	return e.generate(ctx, opReview, prompt)
}

// generate sends prompt with the system persona and returns the first
// choice's text. Only successful responses are memoized.
func (e *Engine) generate(ctx context.Context, op, prompt string) (string, error) {
	if e.memo != nil {
		if text, ok := e.memo.Get(prompt); ok {
			e.Metrics.MemoHit()
			return text, nil
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	var opts []llms.CallOption
	if e.temperature > 0 {
		opts = append(opts, llms.WithTemperature(e.temperature))
	}

	start := time.Now()
	text, err := e.call(ctx, messages, opts)
	e.Metrics.ObserveModelCall(op, err, time.Since(start))
	if err != nil {
		return "", err
	}

	if e.memo != nil {
		e.memo.Add(prompt, text)
	}
	return text, nil
}

func (e *Engine) call(ctx context.Context, messages []llms.MessageContent, opts []llms.CallOption) (string, error) {
	resp, err := e.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("%w: empty response", ErrModelUnavailable)
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("%w: blank response", ErrModelUnavailable)
	}
	return text, nil
}
