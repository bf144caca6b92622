// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paperstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// TopicSummary describes one stored topic.
type TopicSummary struct {
	Topic  string    `json:"topic" yaml:"topic"`
	Papers int       `json:"papers" yaml:"papers"`
	Latest time.Time `json:"latest" yaml:"latest"`
}

// Topics lists the distinct topics in the store, most recently published first.
func (s *Store) Topics(ctx context.Context) ([]TopicSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, count(*), max(published_date)
		 FROM papers GROUP BY topic
		 ORDER BY max(published_date) DESC, topic ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	defer rows.Close()

	var topics []TopicSummary
	for rows.Next() {
		var (
			ts     TopicSummary
			topic  sql.NullString
			latest sql.NullString
		)
		if err := rows.Scan(&topic, &ts.Papers, &latest); err != nil {
			return nil, fmt.Errorf("scanning topic row: %w", err)
		}
		ts.Topic = topic.String
		if latest.String != "" {
			t, err := time.Parse(types.DateLayout, latest.String)
			if err != nil {
				return nil, fmt.Errorf("decoding latest date of topic %q: %w", ts.Topic, err)
			}
			ts.Latest = t
		}
		topics = append(topics, ts)
	}
	return topics, rows.Err()
}

// all returns every paper, or every paper of one topic when topic is non-empty,
// in the same order as QueryByTopic.
func (s *Store) all(ctx context.Context, topic string) ([]types.Paper, error) {
	query := `SELECT id, title, authors, summary, published_date, topic, analysis FROM papers`
	var args []any
	if topic != "" {
		query += ` WHERE topic = ?`
		args = append(args, topic)
	}
	query += ` ORDER BY topic ASC, published_date DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	papers := []types.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// exportPaper is the serialized form of a paper with a day-precision date.
type exportPaper struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Authors   []string `json:"authors" yaml:"authors"`
	Summary   string   `json:"summary" yaml:"summary"`
	Published string   `json:"published_date" yaml:"published_date"`
	Topic     string   `json:"topic" yaml:"topic"`
	Analysis  string   `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

func toExport(papers []types.Paper) []exportPaper {
	out := make([]exportPaper, len(papers))
	for i, p := range papers {
		out[i] = exportPaper{
			ID:        p.ID,
			Title:     p.Title,
			Authors:   p.Authors,
			Summary:   p.Summary,
			Published: p.PublishedDate(),
			Topic:     p.Topic,
			Analysis:  p.Analysis,
		}
	}
	return out
}

// ExportYAML writes stored papers (all, or one topic's) to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, topic string) error {
	papers, err := s.all(ctx, topic)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toExport(papers)); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes stored papers (all, or one topic's) to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, topic string) error {
	papers, err := s.all(ctx, topic)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toExport(papers)); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
