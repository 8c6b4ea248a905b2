package main

import (
	"github.com/spf13/cobra"
)

func newStreamLagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream-lag <room_name>",
		Short: "Report how far the command stream consumer has fallen behind for a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := doJSON(cmd.Context(), "GET", "/streams/"+args[0]+"/lag", nil)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	return cmd
}
