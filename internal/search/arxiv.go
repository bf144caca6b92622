// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultArxivURL is the arXiv search endpoint.
const DefaultArxivURL = "https://export.arxiv.org/api/query"

const defaultPageSize = 100

// ArxivSource queries the arXiv Atom API sorted by submission date, newest first.
type ArxivSource struct {
	Client    *http.Client
	BaseURL   string
	PageSize  int
	UserAgent string
}

// NewArxivSource builds an ArxivSource from configuration.
func NewArxivSource(cfg types.SourceConfig) *ArxivSource {
	return &ArxivSource{
		Client:    httputil.NewClient(cfg.HTTPConfig),
		BaseURL:   cfg.BaseURL,
		PageSize:  cfg.PageSize,
		UserAgent: cfg.UserAgent,
	}
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search yields up to limit papers for topic. The topic is passed verbatim
// as the arXiv search_query. Each page is requested only when the caller
// has consumed the previous one.
func (s *ArxivSource) Search(ctx context.Context, topic string, limit int) iter.Seq2[types.Paper, error] {
	if strings.TrimSpace(topic) == "" {
		return fail(fmt.Errorf("%w: topic is empty", ErrInvalidQuery))
	}
	if limit <= 0 {
		return fail(fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, limit))
	}

	return func(yield func(types.Paper, error) bool) {
		produced := 0
		for start := 0; produced < limit; {
			want := min(s.pageSize(), limit-produced)

			entries, err := s.fetchPage(ctx, topic, start, want)
			if err != nil {
				yield(types.Paper{}, fmt.Errorf("%w: arxiv: %w", ErrSourceUnavailable, err))
				return
			}

			for _, entry := range entries {
				paper, ok, err := entry.toPaper(topic)
				if err != nil {
					yield(types.Paper{}, fmt.Errorf("%w: arxiv: %w", ErrSourceUnavailable, err))
					return
				}
				if !ok {
					continue
				}
				if !yield(paper, nil) {
					return
				}
				produced++
				if produced >= limit {
					return
				}
			}

			if len(entries) < want {
				return
			}
			start += len(entries)
		}
	}
}

func (s *ArxivSource) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return defaultPageSize
}

// fetchPage requests one page and decodes the Atom feed.
func (s *ArxivSource) fetchPage(ctx context.Context, topic string, start, maxResults int) ([]arxivEntry, error) {
	base := s.BaseURL
	if base == "" {
		base = DefaultArxivURL
	}

	params := url.Values{}
	params.Set("search_query", topic)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	body, err := httputil.Fetch(ctx, s.Client, base+"?"+params.Encode(), s.UserAgent)
	if err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	for _, e := range feed.Entries {
		if strings.Contains(e.ID, "/api/errors") {
			return nil, fmt.Errorf("query rejected: %s", collapseSpace(e.Summary))
		}
	}
	return feed.Entries, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// toPaper normalizes an entry. ok is false for entries without an arXiv ID,
// which are skipped; an unparsable published timestamp is an error.
func (e arxivEntry) toPaper(topic string) (types.Paper, bool, error) {
	id := extractArxivID(e.ID)
	if id == "" {
		return types.Paper{}, false, nil
	}

	published, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published))
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("entry %s: bad published date %q", id, e.Published)
	}

	p := types.Paper{
		ID:        id,
		Title:     collapseSpace(e.Title),
		Summary:   collapseSpace(e.Summary),
		Published: published.UTC().Truncate(24 * time.Hour),
		Topic:     topic,
		Authors:   make([]string, 0, len(e.Authors)),
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	return p, true, nil
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// collapseSpace joins the whitespace-separated fields of s with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
