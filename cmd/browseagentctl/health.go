package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/10xr-agents/browse-automation-service/internal/bridge"
)

// newWaitReadyCmd blocks until browseagentd's REST /health endpoint responds
// healthy, or --timeout elapses. Useful for scripts that start the daemon
// and the CLI in sequence.
func newWaitReadyCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "wait-ready",
		Short: "Block until browseagentd is accepting connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := addrPort()
			if err != nil {
				return err
			}
			if !bridge.WaitForServer(port, timeout) {
				return fmt.Errorf("browseagentd did not become ready within %s", timeout)
			}
			fmt.Println("ready")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "max time to wait")
	return cmd
}

func addrPort() (int, error) {
	u, err := url.Parse(addr())
	if err != nil {
		return 0, fmt.Errorf("parse --addr: %w", err)
	}
	return strconv.Atoi(u.Port())
}
