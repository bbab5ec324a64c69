package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"asthma-care-server/internal/config"
)

var (
	envFile string
	cfg     *config.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "asthma-care",
		Short: "Asthma clinic dashboard and data-entry server",
		Long: `asthma-care serves the asthma clinic dashboard: patient registration,
visit recording, predicted PEFR, inhaler technique follow-up and the public
patient link printed on the asthma card.

The clinic spreadsheet is the system of record. Select the backend with
STORE_DRIVER (sheets, xlsx or mysql); see .env for every setting.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; the environment may already be set.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("error loading %s: %w", envFile, err)
			}
			result, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			cfg = result
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(getServeCmd())
	rootCmd.AddCommand(getExportCmd())
	rootCmd.AddCommand(getPredictCmd())
	return rootCmd
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *config.Config {
	return cfg
}
