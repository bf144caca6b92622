// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/observability"
	"github.com/pdiddy/research-assistant/internal/paperstore"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

type fakePipeline struct {
	gotTopic    string
	gotCount    int
	gotQuestion string
	err         error
	partial     bool
}

func (f *fakePipeline) SearchAndAnalyze(_ context.Context, topic string, count int) (assistant.SearchOutput, error) {
	f.gotTopic, f.gotCount = topic, count
	out := assistant.SearchOutput{
		Topic:  topic,
		Papers: []types.Paper{{ID: "2401.00001", Title: "First", Topic: topic, Analysis: "a"}},
	}
	if f.err != nil {
		if f.partial {
			return out, f.err
		}
		return assistant.SearchOutput{}, f.err
	}
	return out, nil
}

func (f *fakePipeline) AnswerQuestion(_ context.Context, topic, question string) (assistant.Synthesis, error) {
	f.gotTopic, f.gotQuestion = topic, question
	if f.err != nil {
		return assistant.Synthesis{}, f.err
	}
	return assistant.Synthesis{Text: "answer", Sources: []types.Paper{{Title: "First"}}}, nil
}

func (f *fakePipeline) GenerateReview(_ context.Context, topic string) (assistant.Synthesis, error) {
	f.gotTopic = topic
	if f.err != nil {
		return assistant.Synthesis{}, f.err
	}
	return assistant.Synthesis{Text: "review", Sources: []types.Paper{{Title: "First"}, {Title: "Second"}}}, nil
}

type fakeLibrary struct {
	papers   map[string][]types.Paper
	gotTopic string
	gotLimit int
	pingErr  error
}

func (f *fakeLibrary) QueryByTopic(_ context.Context, topic string, limit int) ([]types.Paper, error) {
	f.gotTopic, f.gotLimit = topic, limit
	return f.papers[topic], nil
}

func (f *fakeLibrary) Topics(context.Context) ([]paperstore.TopicSummary, error) {
	var out []paperstore.TopicSummary
	for topic, papers := range f.papers {
		out = append(out, paperstore.TopicSummary{Topic: topic, Papers: len(papers)})
	}
	return out, nil
}

func (f *fakeLibrary) Ping(context.Context) error { return f.pingErr }

func newTestServer(t *testing.T, p Pipeline, lib Library) *httptest.Server {
	t.Helper()
	srv := New(types.ServerConfig{Address: "127.0.0.1:0"}, p, lib, observability.NewMetrics(), zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSearches(t *testing.T) {
	p := &fakePipeline{}
	ts := newTestServer(t, p, &fakeLibrary{})

	resp, out := post(t, ts, "/api/v1/searches", `{"topic":"ml","count":3}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ml", p.gotTopic)
	assert.Equal(t, 3, p.gotCount)
	assert.Equal(t, []any{"First"}, out["titles"])
	assert.Len(t, out["papers"], 1)
}

func TestSearches_DefaultCount(t *testing.T) {
	p := &fakePipeline{}
	ts := newTestServer(t, p, &fakeLibrary{})

	resp, _ := post(t, ts, "/api/v1/searches", `{"topic":"ml"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, p.gotCount)
}

func TestSearches_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing topic", `{"count":3}`},
		{"count zero", `{"topic":"ml","count":0}`},
		{"count too large", `{"topic":"ml","count":51}`},
		{"malformed", `{"topic":`},
		{"unknown field", `{"topic":"ml","n":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{}
			ts := newTestServer(t, p, &fakeLibrary{})

			resp, out := post(t, ts, "/api/v1/searches", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
			assert.Empty(t, p.gotTopic, "pipeline must not be called")
		})
	}
}

func TestSearches_SourceFailureKeepsPartialResults(t *testing.T) {
	p := &fakePipeline{err: fmt.Errorf("%w: arxiv: page 2", search.ErrSourceUnavailable), partial: true}
	ts := newTestServer(t, p, &fakeLibrary{})

	resp, out := post(t, ts, "/api/v1/searches", `{"topic":"ml","count":5}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, out["error"], "paper source unavailable")
	assert.Equal(t, []any{"First"}, out["titles"])
	assert.Len(t, out["papers"], 1)
}

func TestPipelineErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no context", fmt.Errorf("%w: topic %q", assistant.ErrNoContext, "ml"), http.StatusNotFound},
		{"empty input", assistant.ErrEmptyInput, http.StatusBadRequest},
		{"invalid query", search.ErrInvalidQuery, http.StatusBadRequest},
		{"source down", fmt.Errorf("%w: arxiv: boom", search.ErrSourceUnavailable), http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &fakePipeline{err: tt.err}, &fakeLibrary{})

			resp, out := post(t, ts, "/api/v1/questions", `{"topic":"ml","question":"why?"}`)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestQuestions(t *testing.T) {
	p := &fakePipeline{}
	ts := newTestServer(t, p, &fakeLibrary{})

	resp, out := post(t, ts, "/api/v1/questions", `{"topic":"ml","question":"What works?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "What works?", p.gotQuestion)
	assert.Equal(t, "answer", out["text"])
	assert.Equal(t, []any{"First"}, out["sources"])
	assert.Equal(t, false, out["degraded"])
}

func TestQuestions_MissingQuestion(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{}, &fakeLibrary{})

	resp, out := post(t, ts, "/api/v1/questions", `{"topic":"ml"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "Question is required")
}

func TestReviews(t *testing.T) {
	p := &fakePipeline{}
	ts := newTestServer(t, p, &fakeLibrary{})

	resp, out := post(t, ts, "/api/v1/reviews", `{"topic":"ml"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "review", out["text"])
	assert.Equal(t, []any{"First", "Second"}, out["sources"])
}

func TestTopicsAndPapers(t *testing.T) {
	lib := &fakeLibrary{papers: map[string][]types.Paper{
		"machine learning": {{ID: "2401.00001", Title: "First", Published: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}},
	}}
	ts := newTestServer(t, &fakePipeline{}, lib)

	resp, out := get(t, ts, "/api/v1/topics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out["topics"], 1)

	resp, out = get(t, ts, "/api/v1/topics/machine%20learning/papers?limit=4")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "machine learning", out["topic"])
	assert.Len(t, out["papers"], 1)
	assert.Equal(t, 4, lib.gotLimit)

	resp, out = get(t, ts, "/api/v1/topics/unknown/papers")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, out["papers"])
	assert.Equal(t, 0, lib.gotLimit)
}

func TestPapers_TopicFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"space", "quantum%20computing", "quantum computing"},
		{"literal percent", "100%25%20accuracy", "100% accuracy"},
		{"escaped slash", "a%2Fb", "a/b"},
		{"surrounding whitespace", "%20ml%20", "ml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := &fakeLibrary{}
			ts := newTestServer(t, &fakePipeline{}, lib)

			resp, out := get(t, ts, "/api/v1/topics/"+tt.path+"/papers")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, out["topic"])
			assert.Equal(t, tt.want, lib.gotTopic)
		})
	}
}

func TestPapers_BlankTopic(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{}, &fakeLibrary{})

	resp, _ := get(t, ts, "/api/v1/topics/%20/papers")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPapers_BadLimit(t *testing.T) {
	ts := newTestServer(t, &fakePipeline{}, &fakeLibrary{})

	resp, _ := get(t, ts, "/api/v1/topics/ml/papers?limit=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	lib := &fakeLibrary{}
	ts := newTestServer(t, &fakePipeline{}, lib)

	resp, out := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])

	lib.pingErr = errors.New("database is locked")
	resp, out = get(t, ts, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", out["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	m := observability.NewMetrics()
	m.PaperAnalyzed()
	srv := New(types.ServerConfig{}, &fakePipeline{}, &fakeLibrary{}, m, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body strings.Builder
	_, err = io.Copy(&body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "research_assistant_papers_analyzed_total 1")
}
