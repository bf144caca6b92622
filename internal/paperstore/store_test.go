// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paperstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "papers.db")
	s, err := Open(types.StoreConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func paper(id, topic string, published time.Time) types.Paper {
	return types.Paper{
		ID:        id,
		Title:     "Title " + id,
		Authors:   []string{"Zed Zimmer", "Amy Adams", "Mo Li"},
		Summary:   "Summary " + id,
		Published: published,
		Topic:     topic,
		Analysis:  "Analysis " + id,
	}
}

func count(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM papers`).Scan(&n))
	return n
}

// --- schema ---

func TestOpenCreatesSchemaAndFile(t *testing.T) {
	s, path := testStore(t)

	_, err := os.Stat(path)
	require.NoError(t, err)

	var n int
	require.NoError(t, s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers'`).Scan(&n))
	assert.Equal(t, 1, n)

	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('papers') ORDER BY cid`)
	require.NoError(t, err)
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var c string
		require.NoError(t, rows.Scan(&c))
		cols = append(cols, c)
	}
	assert.Equal(t, []string{"id", "title", "authors", "summary", "published_date", "topic", "analysis"}, cols)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.db")
	ctx := context.Background()

	s1, err := Open(types.StoreConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s1.Upsert(ctx, paper("a", "t", date(2024, 1, 1))))
	require.NoError(t, s1.Close())

	s2, err := Open(types.StoreConfig{Path: path})
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Analysis a", got.Analysis)
}

// --- upsert ---

func TestUpsertLastWriteWins(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	first := paper("2401.00001", "quantum", date(2024, 1, 1))
	second := types.Paper{
		ID:        "2401.00001",
		Title:     "Revised title",
		Authors:   []string{"Only Author"},
		Summary:   "Revised summary",
		Published: date(2024, 2, 2),
		Topic:     "quantum",
	}

	require.NoError(t, s.Upsert(ctx, first))
	require.NoError(t, s.Upsert(ctx, second))

	assert.Equal(t, 1, count(t, s))
	got, err := s.Get(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Equal(t, second, got, "every field, including empty analysis, is replaced")
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	s, _ := testStore(t)
	assert.Error(t, s.Upsert(context.Background(), types.Paper{Title: "no id"}))
	assert.Equal(t, 0, count(t, s))
}

func TestUpsertNilAuthorsStoredAsEmptyList(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, types.Paper{ID: "x", Topic: "t"}))

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT authors FROM papers WHERE id='x'`).Scan(&raw))
	assert.Equal(t, "[]", raw)

	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Authors)
	assert.True(t, got.Published.IsZero())
}

// --- query ---

func TestQueryByTopic(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		require.NoError(t, s.Upsert(ctx, paper(fmt.Sprintf("q%d", i), "quantum", date(2024, 1, i))))
	}
	require.NoError(t, s.Upsert(ctx, paper("b1", "biology", date(2024, 5, 1))))
	require.NoError(t, s.Upsert(ctx, paper("Q1", "Quantum", date(2024, 5, 1))))

	tests := []struct {
		name    string
		topic   string
		limit   int
		wantIDs []string
	}{
		{"limit smaller than matches", "quantum", 3, []string{"q7", "q6", "q5"}},
		{"limit larger than matches", "quantum", 50, []string{"q7", "q6", "q5", "q4", "q3", "q2", "q1"}},
		{"other topic", "biology", 10, []string{"b1"}},
		{"case sensitive", "Quantum", 10, []string{"Q1"}},
		{"no normalization", " quantum", 10, nil},
		{"unknown topic", "chemistry", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryByTopic(ctx, tt.topic, tt.limit)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), tt.limit)

			var ids []string
			for _, p := range got {
				assert.Equal(t, tt.topic, p.Topic)
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestQueryByTopicDefaultLimit(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, s.Upsert(ctx, paper(fmt.Sprintf("p%02d", i), "t", date(2024, 1, 1+i))))
	}

	got, err := s.QueryByTopic(ctx, "t", 0)
	require.NoError(t, err)
	assert.Len(t, got, defaultMaxResults)
}

func TestQueryByTopicTieBreakByID(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Upsert(ctx, paper(id, "t", date(2024, 1, 1))))
	}

	for range 3 {
		got, err := s.QueryByTopic(ctx, "t", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"Title a", "Title b", "Title c"}, types.Titles(got))
	}
}

func TestAuthorRoundTrip(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	authors := []string{"Zoë Ångström", "李 雷", "O'Brien, Jr.", `Quote "Q" Person`, "Amy Adams"}
	p := paper("rt", "t", date(2023, 12, 31))
	p.Authors = authors
	require.NoError(t, s.Upsert(ctx, p))

	got, err := s.QueryByTopic(ctx, "t", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, authors, got[0].Authors)
	assert.Equal(t, "2023-12-31", got[0].PublishedDate())
}

func TestGetNotFound(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

// --- topics and export ---

func TestTopics(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, paper("a", "old", date(2020, 1, 1))))
	require.NoError(t, s.Upsert(ctx, paper("b", "new", date(2024, 1, 1))))
	require.NoError(t, s.Upsert(ctx, paper("c", "new", date(2023, 1, 1))))

	topics, err := s.Topics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, TopicSummary{Topic: "new", Papers: 2, Latest: date(2024, 1, 1)}, topics[0])
	assert.Equal(t, TopicSummary{Topic: "old", Papers: 1, Latest: date(2020, 1, 1)}, topics[1])
}

func TestTopicsCorruptDate(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.db.Exec(`INSERT INTO papers (id, title, authors, summary, published_date, topic, analysis)
		VALUES ('x', 't', '[]', 's', 'not-a-date', 'ml', '')`)
	require.NoError(t, err)

	_, err = s.Topics(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `topic "ml"`)
}

func TestExportYAML(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, paper("a", "t1", date(2024, 1, 1))))
	require.NoError(t, s.Upsert(ctx, paper("b", "t2", date(2024, 1, 2))))

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, "t1"))

	var entries []exportPaper
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "2024-01-01", entries[0].Published)
	assert.Equal(t, []string{"Zed Zimmer", "Amy Adams", "Mo Li"}, entries[0].Authors)
}

func TestExportJSONAll(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, paper("a", "t1", date(2024, 1, 1))))
	require.NoError(t, s.Upsert(ctx, paper("b", "t2", date(2024, 1, 2))))

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &buf, ""))

	var entries []exportPaper
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestExportEmptyStore(t *testing.T) {
	s, _ := testStore(t)
	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(context.Background(), &buf, ""))
	assert.Equal(t, "[]\n", buf.String())
}
