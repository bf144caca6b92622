// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask <topic> <question>",
	Short: "Answer a question from the stored papers on a topic",
	Long: `Ask answers a question using the three most recently published stored
papers on a topic as context. Run search for the topic first; with no stored
papers, ask prints a warning and exits non-zero.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	answer, err := p.assistant.AnswerQuestion(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return writeSynthesis(cmd, "Answer", answer, jsonOutput)
}

// writeSynthesis prints s as JSON or as headed text with its source titles.
func writeSynthesis(cmd *cobra.Command, heading string, s assistant.Synthesis, jsonOutput bool) error {
	if jsonOutput {
		return assistant.FormatJSON(s, cmd.OutOrStdout())
	}
	assistant.FormatSynthesis(heading, s, cmd.OutOrStdout())
	return nil
}

func init() {
	askCmd.Flags().Bool("json", false, "output the answer as JSON")

	rootCmd.AddCommand(askCmd)
}
