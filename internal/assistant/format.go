// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatSearch writes a search run as human-readable text to w.
func FormatSearch(out SearchOutput, w io.Writer) {
	fmt.Fprintf(w, "Analyzed %d papers for %q\n", len(out.Papers), out.Topic)

	for _, p := range out.Papers {
		fmt.Fprintf(w, "\n%s\n%s\n", p.Title, strings.Repeat("=", min(len(p.Title), 80)))
		fmt.Fprintf(w, "ID:        %s\n", p.ID)
		fmt.Fprintf(w, "Authors:   %s\n", strings.Join(p.Authors, ", "))
		fmt.Fprintf(w, "Published: %s\n", p.PublishedDate())
		fmt.Fprintf(w, "\nOriginal Abstract:\n%s\n", p.Summary)
		analysis := p.Analysis
		if analysis == "" {
			analysis = "No analysis available"
		}
		fmt.Fprintf(w, "\nDetailed Analysis:\n%s\n", analysis)
	}

	if len(out.Failures) > 0 {
		fmt.Fprintf(w, "\n%d papers skipped:\n", len(out.Failures))
		for _, f := range out.Failures {
			fmt.Fprintf(w, "  %s  %s: %s\n", f.ID, f.Title, f.Error)
		}
	}
}

// FormatSynthesis writes an answer or review under heading, followed by the
// titles of the papers it was based on.
func FormatSynthesis(heading string, s Synthesis, w io.Writer) {
	fmt.Fprintf(w, "%s:\n%s\n", heading, s.Text)
	fmt.Fprintln(w, "\nBased on papers:")
	for _, title := range s.SourceTitles() {
		fmt.Fprintf(w, "- %s\n", title)
	}
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
