package main

import (
	"github.com/spf13/cobra"
)

func newIngestStartCmd() *cobra.Command {
	var knowledgeID string
	var sourceType string
	var ref string
	var verify bool

	cmd := &cobra.Command{
		Use:   "ingest-start",
		Short: "Start a knowledge extraction run against one source",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := doJSON(cmd.Context(), "POST", "/ingest/start", map[string]any{
				"knowledge_id": knowledgeID,
				"sources": []map[string]string{
					{"type": sourceType, "ref": ref},
				},
				"verify": verify,
			})
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&knowledgeID, "knowledge-id", "", "existing knowledge_id to resync, or blank to create one")
	cmd.Flags().StringVar(&sourceType, "type", "documentation", "source type (documentation, website, video)")
	cmd.Flags().StringVar(&ref, "ref", "", "source reference (URL or path)")
	cmd.Flags().BoolVar(&verify, "verify", false, "run the feature-flagged verification phase")
	_ = cmd.MarkFlagRequired("ref")
	return cmd
}

func newIngestStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest-status <job_id>",
		Short: "Check the status of an ingest or verify job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := doJSON(cmd.Context(), "GET", "/workflows/status/"+args[0], nil)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	return cmd
}

func newVerifyStartCmd() *cobra.Command {
	var knowledgeID string
	cmd := &cobra.Command{
		Use:   "verify-start",
		Short: "Trigger the feature-flagged verification phase for a knowledge graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := doJSON(cmd.Context(), "POST", "/verify/start", map[string]string{"knowledge_id": knowledgeID})
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&knowledgeID, "knowledge-id", "", "knowledge_id to verify")
	_ = cmd.MarkFlagRequired("knowledge-id")
	return cmd
}
