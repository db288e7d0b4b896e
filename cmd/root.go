package cmd

import (
	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/config"
)

var (
	flagServer string
	flagDB     string
	flagConfig string
	flagEnv    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "minibooks",
	Short: "Double-entry bookkeeping for UK small businesses",
	Long:  "A double-entry accounting ledger backed by SQLite, with a UK chart of accounts, VAT reporting and a terminal UI.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(flagEnv); err != nil {
			return err
		}
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			loaded.Database = flagDB
		}
		cfg = loaded
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "minibooks.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to minibooks.yaml")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env-file", ".env", "Environment file to load")
}

func Execute() error {
	return rootCmd.Execute()
}
