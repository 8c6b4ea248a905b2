// Command browseagentctl is an operator CLI against a running browseagentd:
// start/close sessions, inspect knowledge entities, and check stream lag.
// Flag/env wiring follows joestump-claude-ops's cmd/claudeops main.go
// (cobra flags bound into viper, BROWSECTL_ env prefix); subcommands are
// plain cobra.Command.AddCommand, the standard way to shape a multi-verb CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "browseagentctl",
		Short: "Operator CLI for browseagentd",
	}
	rootCmd.PersistentFlags().String("addr", "http://localhost:8702", "browseagentd REST address")
	_ = viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr"))

	viper.SetEnvPrefix("BROWSECTL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.AddCommand(
		newIngestStartCmd(),
		newIngestStatusCmd(),
		newGraphQueryCmd(),
		newEntityCmd(),
		newStreamLagCmd(),
		newVerifyStartCmd(),
		newWaitReadyCmd(),
		newAuditCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addr() string { return viper.GetString("addr") }
