// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Inspect and export the stored papers",
	Long: `Papers reads the local paper database without calling the model. Use
subcommands to list a topic, summarize all topics, export records, or preview
what a search would fetch.`,
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list <topic>",
	Short: "List stored papers on a topic, newest first",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPapersList,
}

func runPapersList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	topic := topicArg(args)
	papers, err := store.QueryByTopic(cmd.Context(), topic, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return assistant.FormatJSON(papers, cmd.OutOrStdout())
	}
	formatPaperTable(papers, cmd.OutOrStdout())
	return nil
}

// --- topics subcommand ---

var papersTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Summarize stored topics with paper counts",
	Args:  cobra.NoArgs,
	RunE:  runPapersTopics,
}

func runPapersTopics(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	topics, err := store.Topics(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(topics) == 0 {
		fmt.Fprintln(w, "No stored topics.")
		return nil
	}
	fmt.Fprintf(w, "%-40s  %6s  %s\n", "Topic", "Papers", "Latest")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, t := range topics {
		fmt.Fprintf(w, "%-40s  %6d  %s\n", truncate(t.Topic, 40), t.Papers, t.Latest.Format(types.DateLayout))
	}
	return nil
}

// --- export subcommand ---

var papersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers to YAML or JSON",
	Long: `Export writes every stored paper, or one topic with --topic, to stdout or
to the file named by --output.`,
	Args: cobra.NoArgs,
	RunE: runPapersExport,
}

func runPapersExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	topic, _ := cmd.Flags().GetString("topic")
	topic = strings.TrimSpace(topic)
	output, _ := cmd.Flags().GetString("output")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = store.ExportYAML(cmd.Context(), w, topic)
	case "json":
		err = store.ExportJSON(cmd.Context(), w, topic)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
	}
	return nil
}

// --- fetch subcommand ---

var papersFetchCmd = &cobra.Command{
	Use:   "fetch <topic>",
	Short: "Fetch papers from arXiv without analyzing or storing them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPapersFetch,
}

func runPapersFetch(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	topic := topicArg(args)
	src := search.NewArxivSource(cfg.Source)
	papers, err := search.Collect(src.Search(cmd.Context(), topic, count), count)
	if err != nil {
		return err
	}
	if jsonOutput {
		return assistant.FormatJSON(papers, cmd.OutOrStdout())
	}
	formatPaperTable(papers, cmd.OutOrStdout())
	return nil
}

// --- shared helpers ---

func formatPaperTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-12s  %-10s  %-60s  %s\n", "ID", "Published", "Title", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, p := range papers {
		fmt.Fprintf(w, "%-12s  %-10s  %-60s  %s\n",
			p.ID, p.PublishedDate(), truncate(p.Title, 60), truncate(strings.Join(p.Authors, ", "), 30))
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	papersListCmd.Flags().Int("limit", 0, "maximum papers to list (default: store.max_results)")
	papersListCmd.Flags().Bool("json", false, "output papers as JSON")

	papersExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	papersExportCmd.Flags().String("topic", "", "export only this topic")
	papersExportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	papersFetchCmd.Flags().IntP("count", "n", 5, "number of papers to fetch")
	papersFetchCmd.Flags().Bool("json", false, "output papers as JSON")

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersTopicsCmd)
	papersCmd.AddCommand(papersExportCmd)
	papersCmd.AddCommand(papersFetchCmd)

	rootCmd.AddCommand(papersCmd)
}
