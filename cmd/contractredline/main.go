package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ContractRedliner/internal/app"
	"ContractRedliner/internal/config"
	"ContractRedliner/internal/logging"
	"ContractRedliner/internal/usecase"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		originalPath  string
		amendmentPath string
		sessionID     string
	)

	cmd := &cobra.Command{
		Use:   "contractredline",
		Short: "Compare two scanned contract versions and report what changed",
		Long: "contractredline parses an original contract image and its amendment, " +
			"aligns their sections, and prints a validated change report as JSON.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close(ctx)

			report, err := application.Run(ctx, usecase.RunRequest{
				OriginalPath:  originalPath,
				AmendmentPath: amendmentPath,
				SessionID:     sessionID,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&originalPath, "original", "", "path to the original contract image (PNG/JPEG)")
	cmd.Flags().StringVar(&amendmentPath, "amendment", "", "path to the amendment contract image (PNG/JPEG)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "optional session identifier for tracing")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("amendment")

	return cmd
}
