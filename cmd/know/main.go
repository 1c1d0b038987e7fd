// Package main provides the know CLI for operating the questionnaire
// platform: schema migration and development seed data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickoine/know/pkg/di"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// container is the global DI container, initialized on startup.
	container *di.Container
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "know",
	Short: "know manages the questionnaire platform",
	Long: `know operates the questionnaire platform: it migrates the database
schema and loads development seed data. Repositories, cache backend, and
database are configured through a YAML file passed with --config.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initContainer,
	PersistentPostRunE: closeContainer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: built-in in-memory setup)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func initContainer(cmd *cobra.Command, args []string) error {
	cfg := di.DefaultConfig()
	if configFile != "" {
		loaded, err := di.LoadConfig(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	c, err := di.NewContainer(cfg)
	if err != nil {
		return err
	}
	container = c
	return nil
}

func closeContainer(cmd *cobra.Command, args []string) error {
	if container != nil {
		return container.Close()
	}
	return nil
}
