// Package cli implements the medrag operator command line.
package cli

import (
	"os"

	"medrag/internal/config"
	"medrag/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "medrag",
	Short: "medrag: medical question answering over a curated corpus",
	Long: `medrag answers medical questions from the ingested corpus, the same way
the HTTP API does, and manages the corpus and the answer cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(envFile)
		cfg = config.Load()
		logging.Setup(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading MEDRAG_* settings")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
