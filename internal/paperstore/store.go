// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paperstore persists analyzed paper records in a single-file SQLite
// database keyed by paper ID, with topic-scoped retrieval.
package paperstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "data/research_papers.db"

const defaultMaxResults = 10

// ErrNotFound is returned by Get for an unknown paper ID.
var ErrNotFound = errors.New("paper not found")

// Store manages the papers table. The underlying connection is shared and
// limited to one open connection; writes are committed before Upsert returns.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			summary TEXT,
			published_date TEXT,
			topic TEXT,
			analysis TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_topic_date ON papers(topic, published_date)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Upsert inserts paper or replaces every column of the existing record with
// the same ID.
func (s *Store) Upsert(ctx context.Context, paper types.Paper) error {
	if paper.ID == "" {
		return fmt.Errorf("upserting paper: empty id")
	}

	authors := paper.Authors
	if authors == nil {
		authors = []string{}
	}
	authorsJSON, err := json.Marshal(authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (id, title, authors, summary, published_date, topic, analysis)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, summary=excluded.summary,
			published_date=excluded.published_date, topic=excluded.topic,
			analysis=excluded.analysis`,
		paper.ID, paper.Title, string(authorsJSON), paper.Summary,
		paper.PublishedDate(), paper.Topic, paper.Analysis,
	)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", paper.ID, err)
	}
	return nil
}

// QueryByTopic returns at most limit papers whose topic equals topic exactly,
// newest publication date first, ties broken by ID. A non-positive limit
// uses the configured default.
func (s *Store) QueryByTopic(ctx context.Context, topic string, limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, summary, published_date, topic, analysis
		 FROM papers WHERE topic = ?
		 ORDER BY published_date DESC, id ASC
		 LIMIT ?`,
		topic, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying papers for topic %q: %w", topic, err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Get returns the paper with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, authors, summary, published_date, topic, analysis
		 FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(sc scanner) (types.Paper, error) {
	var (
		p                           types.Paper
		title, authorsJSON, summary sql.NullString
		published, topic, analysis  sql.NullString
	)
	if err := sc.Scan(&p.ID, &title, &authorsJSON, &summary, &published, &topic, &analysis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Paper{}, err
		}
		return types.Paper{}, fmt.Errorf("scanning row: %w", err)
	}

	p.Title = title.String
	p.Summary = summary.String
	p.Topic = topic.String
	p.Analysis = analysis.String

	p.Authors = []string{}
	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
			return types.Paper{}, fmt.Errorf("decoding authors of %s: %w", p.ID, err)
		}
	}

	if published.String != "" {
		t, err := time.Parse(types.DateLayout, published.String)
		if err != nil {
			return types.Paper{}, fmt.Errorf("decoding published date of %s: %w", p.ID, err)
		}
		p.Published = t
	}
	return p, nil
}
