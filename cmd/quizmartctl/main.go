// Command quizmartctl runs maintenance tasks against a quizmart database:
// index setup, bulk quiz import and offline attempt exports.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "quizmartctl",
		Short:         "Maintenance commands for a quizmart deployment",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (env QUIZMART_* and .env also apply)")
	root.PersistentFlags().String("mongo-uri", "", "MongoDB connection URI")
	root.PersistentFlags().String("mongo-database", "", "MongoDB database name")

	settings := func(cmd *cobra.Command) (Settings, error) {
		return LoadSettings(configFile, cmd.Flags())
	}

	root.AddCommand(indexesCmd(settings))
	root.AddCommand(quizCmd(settings))
	root.AddCommand(attemptsCmd(settings))
	return root
}
