package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"asthma-care-server/internal/logger"
	"asthma-care-server/internal/service"
)

func getExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Writes both clinic tables to an XLSX workbook",
		Long: `Reads the patients and visits tables from the configured store and
writes them, unchanged, to a local workbook. Useful as a backup of the
clinic sheet.

Examples:
  asthma-care export
  asthma-care export -o backup.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			ctx := context.Background()
			if output == "" {
				output = fmt.Sprintf("asthma_export_%s.xlsx", time.Now().Format("20060102"))
			}

			log, err := logger.NewLogger(cfg.Log.Level, "console", "asthma-care-export")
			if err != nil {
				return fmt.Errorf("error creating logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			b, err := openBackends(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("error opening %s store: %w", cfg.Store.Driver, err)
			}
			defer func() { _ = b.close() }()

			clinic := service.NewClinic(b.store, b.public, b.store, cfg.AppURL, log)
			data, err := clinic.ExportWorkbook(ctx)
			if err != nil {
				return fmt.Errorf("error reading clinic tables: %w", err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("error writing %s: %w", output, err)
			}
			log.Info("Export written",
				zap.String("file", output),
				zap.String("size", humanize.Bytes(uint64(len(data)))),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default asthma_export_YYYYMMDD.xlsx)")
	return cmd
}
