// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant pipeline:
// the paper record that flows from search through analysis into the store, and
// the configuration of each stage.
package types

import "time"

// DateLayout is the day-precision layout used for publication dates in the
// store and in rendered output.
const DateLayout = "2006-01-02"

// Paper is the normalized record of one academic paper. The search stage
// creates it without Analysis; the analysis stage returns an enriched copy;
// the store persists it keyed by ID.
type Paper struct {
	// ID is the source-assigned identifier (a versionless arXiv ID such as "2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Published is the publication date, truncated to the day in UTC.
	Published time.Time `json:"published" yaml:"published"`

	// Topic is the label the paper was fetched and stored under.
	Topic string `json:"topic" yaml:"topic"`

	// Analysis is the model-generated detailed analysis. Empty until analyzed.
	Analysis string `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// PublishedDate returns Published formatted as YYYY-MM-DD, or "" if unset.
func (p Paper) PublishedDate() string {
	if p.Published.IsZero() {
		return ""
	}
	return p.Published.Format(DateLayout)
}

// Titles returns the titles of papers in order.
func Titles(papers []Paper) []string {
	titles := make([]string, len(papers))
	for i, p := range papers {
		titles[i] = p.Title
	}
	return titles
}
