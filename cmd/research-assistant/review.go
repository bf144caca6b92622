// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <topic>",
	Short: "Write a literature review from the stored papers on a topic",
	Long: `Review synthesizes a literature review from the most recently published
stored papers on a topic. The review prompt covers at most five papers; the
printed source list names every paper retrieved for the topic.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := newPipeline(nil)
	if err != nil {
		return err
	}
	defer p.Close()

	review, err := p.assistant.GenerateReview(cmd.Context(), topicArg(args))
	if err != nil {
		return err
	}
	return writeSynthesis(cmd, "Literature Review", review, jsonOutput)
}

func init() {
	reviewCmd.Flags().Bool("json", false, "output the review as JSON")

	rootCmd.AddCommand(reviewCmd)
}
