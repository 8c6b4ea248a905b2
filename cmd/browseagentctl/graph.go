package main

import (
	"github.com/spf13/cobra"
)

func newGraphQueryCmd() *cobra.Command {
	var knowledgeID, queryType, screenID, fromID, toID, q string

	cmd := &cobra.Command{
		Use:   "graph-query",
		Short: "Run a graph query (find_path, get_neighbors, search_screens, get_transitions)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := doJSON(cmd.Context(), "POST", "/graph/query", map[string]string{
				"knowledge_id": knowledgeID,
				"query_type":   queryType,
				"screen_id":    screenID,
				"from_id":      fromID,
				"to_id":        toID,
				"q":            q,
			})
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&knowledgeID, "knowledge-id", "", "knowledge_id to query")
	cmd.Flags().StringVar(&queryType, "query-type", "search_screens", "find_path, get_neighbors, search_screens, get_transitions")
	cmd.Flags().StringVar(&screenID, "screen-id", "", "screen_id for get_neighbors")
	cmd.Flags().StringVar(&fromID, "from-id", "", "from_id for find_path")
	cmd.Flags().StringVar(&toID, "to-id", "", "to_id for find_path")
	cmd.Flags().StringVar(&q, "q", "", "search term for search_screens")
	_ = cmd.MarkFlagRequired("knowledge-id")
	return cmd
}

func newEntityCmd() *cobra.Command {
	var collection, id, knowledgeID string

	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Fetch one entity by id, or list all entities of a kind for a knowledge_id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id != "" {
				out, err := doJSON(cmd.Context(), "GET", "/"+collection+"/"+id, nil)
				if err != nil {
					return err
				}
				printJSON(out)
				return nil
			}
			out, err := doJSON(cmd.Context(), "GET", "/"+collection+"?website_id="+knowledgeID, nil)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "screens", "screens, tasks, actions, or transitions")
	cmd.Flags().StringVar(&id, "id", "", "fetch a single entity by id")
	cmd.Flags().StringVar(&knowledgeID, "knowledge-id", "", "list all entities for this knowledge_id")
	return cmd
}
