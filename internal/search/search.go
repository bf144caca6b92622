// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries an academic paper index by topic and yields
// normalized paper records lazily, newest submissions first.
package search

import (
	"context"
	"errors"
	"iter"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var (
	// ErrSourceUnavailable is wrapped by every error caused by the index being
	// unreachable or returning malformed data. It ends the sequence.
	ErrSourceUnavailable = errors.New("paper source unavailable")

	// ErrInvalidQuery reports an empty topic or a non-positive limit.
	ErrInvalidQuery = errors.New("invalid search query")
)

// Source searches a single academic index. Search returns a lazy sequence:
// nothing is fetched until the caller ranges over it, and pages are fetched
// only as the caller advances. A yielded error is always the last element.
type Source interface {
	Name() string
	Search(ctx context.Context, topic string, limit int) iter.Seq2[types.Paper, error]
}

// Collect drains seq into a slice, stopping after max records (max <= 0
// drains everything). It returns the first error the sequence yields.
func Collect(seq iter.Seq2[types.Paper, error], max int) ([]types.Paper, error) {
	var papers []types.Paper
	for p, err := range seq {
		if err != nil {
			return papers, err
		}
		papers = append(papers, p)
		if max > 0 && len(papers) >= max {
			break
		}
	}
	return papers, nil
}

// fail returns a sequence that yields a single error.
func fail(err error) iter.Seq2[types.Paper, error] {
	return func(yield func(types.Paper, error) bool) {
		yield(types.Paper{}, err)
	}
}
