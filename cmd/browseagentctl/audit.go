package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// newAuditCmd queries GET /audit: recent MCP tool-call invocations, newest
// first, scoped to a session and/or tool name.
func newAuditCmd() *cobra.Command {
	var sessionID, toolName string
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent tool-call audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if sessionID != "" {
				q.Set("session_id", sessionID)
			}
			if toolName != "" {
				q.Set("tool_name", toolName)
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprintf("%d", limit))
			}
			out, err := doJSON(cmd.Context(), "GET", "/audit?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "filter by session_id")
	cmd.Flags().StringVar(&toolName, "tool-name", "", "filter by tool_name")
	cmd.Flags().IntVar(&limit, "limit", 0, "max entries (server default if unset)")
	return cmd
}
