// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant sequences the research pipeline: search and analyze a
// topic, answer a question from stored papers, or write a literature review.
// Each entry point is a plain synchronous call; state lives only in the store.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-assistant/internal/analysis"
	"github.com/pdiddy/research-assistant/internal/observability"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// AnswerContextPapers is the number of stored papers retrieved for Q&A.
	AnswerContextPapers = 3

	// ReviewContextPapers is the number of stored papers retrieved for a review.
	ReviewContextPapers = 10
)

// Fallback texts returned when the model fails during synthesis.
const (
	AnswerUnavailable = "Could not generate an answer due to an error."
	ReviewUnavailable = "Could not generate a review due to an error."
)

var (
	// ErrNoContext reports that no papers are stored for the requested topic.
	// It is returned before any model call.
	ErrNoContext = errors.New("no papers found for this topic; search for papers first")

	// ErrEmptyInput reports a blank topic or question.
	ErrEmptyInput = errors.New("topic and question must not be empty")
)

// Analyzer produces model-generated analysis and synthesis. *analysis.Engine
// implements it.
type Analyzer interface {
	AnalyzePaper(ctx context.Context, paper types.Paper) (types.Paper, error)
	SynthesizeAnswer(ctx context.Context, question string, papers []types.Paper) (string, error)
	SynthesizeReview(ctx context.Context, papers []types.Paper) (string, error)
}

// Repository persists and retrieves papers. *paperstore.Store implements it.
type Repository interface {
	Upsert(ctx context.Context, paper types.Paper) error
	QueryByTopic(ctx context.Context, topic string, limit int) ([]types.Paper, error)
}

// Assistant wires a paper source, an analyzer, and a repository together.
type Assistant struct {
	source   search.Source
	analyzer Analyzer
	store    Repository
	logger   zerolog.Logger

	// Metrics is optional.
	Metrics *observability.Metrics
}

// New returns an Assistant over the given collaborators.
func New(source search.Source, analyzer Analyzer, store Repository, logger zerolog.Logger) *Assistant {
	return &Assistant{
		source:   source,
		analyzer: analyzer,
		store:    store,
		logger:   logger.With().Str("component", "assistant").Logger(),
	}
}

// PaperFailure records a paper dropped from a search run.
type PaperFailure struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// SearchOutput is the aggregate result of SearchAndAnalyze.
type SearchOutput struct {
	Topic    string         `json:"topic"`
	Papers   []types.Paper  `json:"papers"`
	Failures []PaperFailure `json:"failures,omitempty"`
}

// Synthesis is the result of AnswerQuestion or GenerateReview.
type Synthesis struct {
	Text     string        `json:"text"`
	Sources  []types.Paper `json:"-"`
	Degraded bool          `json:"degraded"`
}

// SourceTitles returns the titles of the papers the synthesis was based on.
func (s Synthesis) SourceTitles() []string {
	return types.Titles(s.Sources)
}

// MarshalJSON renders the sources as a list of titles.
func (s Synthesis) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text     string   `json:"text"`
		Sources  []string `json:"sources"`
		Degraded bool     `json:"degraded"`
	}{s.Text, s.SourceTitles(), s.Degraded})
}

// SearchAndAnalyze fetches count papers for topic and, one at a time,
// analyzes and stores each. A paper whose analysis or storage fails is
// logged, reported in Failures, and skipped; the others still proceed.
// A source failure aborts the run and is returned.
func (a *Assistant) SearchAndAnalyze(ctx context.Context, topic string, count int) (SearchOutput, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return SearchOutput{}, ErrEmptyInput
	}

	log := observability.WithTopic(a.logger, topic).With().
		Str("run_id", uuid.NewString()).
		Str("source", a.source.Name()).
		Logger()
	log.Info().Int("count", count).Msg("search started")

	out := SearchOutput{Topic: topic, Papers: []types.Paper{}}

	for paper, err := range a.source.Search(ctx, topic, count) {
		if err != nil {
			if errors.Is(err, search.ErrSourceUnavailable) {
				a.Metrics.SourceError()
			}
			log.Error().Err(err).Int("analyzed", len(out.Papers)).Msg("search aborted")
			return out, fmt.Errorf("searching %q: %w", topic, err)
		}

		plog := observability.WithPaper(log, paper.ID, paper.Title)

		analyzed, err := a.analyzer.AnalyzePaper(ctx, paper)
		if err == nil {
			err = a.store.Upsert(ctx, analyzed)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			plog.Warn().Err(err).Msg("paper skipped")
			a.Metrics.PaperFailed()
			out.Failures = append(out.Failures, PaperFailure{ID: paper.ID, Title: paper.Title, Error: err.Error()})
			continue
		}

		plog.Debug().Msg("paper analyzed")
		a.Metrics.PaperAnalyzed()
		out.Papers = append(out.Papers, analyzed)
	}

	log.Info().
		Int("analyzed", len(out.Papers)).
		Int("failed", len(out.Failures)).
		Msg("search finished")
	return out, nil
}

// AnswerQuestion answers question from up to three stored papers on topic.
// With no stored papers it returns ErrNoContext without calling the model.
// A model failure yields a degraded Synthesis rather than an error.
func (a *Assistant) AnswerQuestion(ctx context.Context, topic, question string) (Synthesis, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" || strings.TrimSpace(question) == "" {
		return Synthesis{}, ErrEmptyInput
	}

	papers, err := a.grounding(ctx, topic, AnswerContextPapers)
	if err != nil {
		return Synthesis{}, err
	}

	text, err := a.analyzer.SynthesizeAnswer(ctx, question, papers)
	if err != nil {
		return a.degraded(err, topic, "answer", AnswerUnavailable, papers)
	}
	return Synthesis{Text: text, Sources: papers}, nil
}

// GenerateReview writes a literature review from up to ten stored papers on
// topic; the analyzer uses at most the first five. With no stored papers it
// returns ErrNoContext. A model failure yields a degraded Synthesis.
func (a *Assistant) GenerateReview(ctx context.Context, topic string) (Synthesis, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Synthesis{}, ErrEmptyInput
	}

	papers, err := a.grounding(ctx, topic, ReviewContextPapers)
	if err != nil {
		return Synthesis{}, err
	}

	text, err := a.analyzer.SynthesizeReview(ctx, papers)
	if err != nil {
		return a.degraded(err, topic, "review", ReviewUnavailable, papers)
	}
	return Synthesis{Text: text, Sources: papers}, nil
}

// grounding retrieves the stored papers a synthesis is based on.
func (a *Assistant) grounding(ctx context.Context, topic string, limit int) ([]types.Paper, error) {
	papers, err := a.store.QueryByTopic(ctx, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("loading papers for %q: %w", topic, err)
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoContext, topic)
	}
	return papers, nil
}

func (a *Assistant) degraded(err error, topic, op, fallback string, papers []types.Paper) (Synthesis, error) {
	log := observability.WithTopic(a.logger, topic)
	ev := log.Error().Err(err).Str("operation", op)
	if errors.Is(err, analysis.ErrModelUnavailable) {
		ev = ev.Bool("model_unavailable", true)
	}
	ev.Msg("synthesis failed")
	return Synthesis{Text: fallback, Sources: papers, Degraded: true}, nil
}
