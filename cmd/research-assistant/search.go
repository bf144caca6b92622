// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/assistant"
)

var searchCmd = &cobra.Command{
	Use:   "search <topic>",
	Short: "Search arXiv for a topic, then analyze and store each paper",
	Long: `Search fetches the most recently submitted arXiv papers matching a topic,
asks the model for a structured analysis of each one, and stores the results
under that topic. A paper whose analysis fails is reported and skipped; the
remaining papers are still analyzed and stored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	out, err := p.assistant.SearchAndAnalyze(cmd.Context(), topicArg(args), count)
	return writeSearch(cmd.OutOrStdout(), out, err, jsonOutput)
}

// writeSearch prints out, including the papers stored before a failed run,
// and then returns runErr.
func writeSearch(w io.Writer, out assistant.SearchOutput, runErr error, jsonOutput bool) error {
	if runErr != nil && len(out.Papers) == 0 && len(out.Failures) == 0 {
		return runErr
	}
	if jsonOutput {
		if err := assistant.FormatJSON(out, w); err != nil {
			return err
		}
	} else {
		assistant.FormatSearch(out, w)
	}
	return runErr
}

// topicArg joins the positional topic words and trims surrounding whitespace,
// matching how search stores the topic.
func topicArg(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func init() {
	searchCmd.Flags().IntP("count", "n", 5, "number of papers to fetch and analyze")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
