package main

import (
	"context"
	"fmt"
	"os"

	"github.com/smallbiznis/orbload/internal/cache"
	"github.com/smallbiznis/orbload/internal/clock"
	"github.com/smallbiznis/orbload/internal/config"
	"github.com/smallbiznis/orbload/internal/ingest"
	ingestdomain "github.com/smallbiznis/orbload/internal/ingest/domain"
	"github.com/smallbiznis/orbload/internal/orb"
	logpkg "github.com/smallbiznis/orbload/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		filePath  string
		warmCache bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:           "orbload [file]",
		Short:         "Ingest a billing transactions CSV into Orb",
		Long:          "orbload reads a CSV of billing transactions, creates the customers it references, opens historical backfill jobs and submits the rows as usage events.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				filePath = args[0]
			}
			return run(ingestdomain.RunRequest{
				FilePath:  filePath,
				WarmCache: warmCache,
				DryRun:    dryRun,
			})
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the transactions CSV (defaults to CSV_FILE)")
	cmd.Flags().BoolVar(&warmCache, "warm-cache", false, "seed the customer cache from existing platform customers before processing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the pipeline without any platform writes")

	return cmd
}

func run(req ingestdomain.RunRequest) error {
	var runErr error

	app := fx.New(
		config.Module,
		logpkg.Module,
		clock.Module,
		cache.Module,
		orb.Module,
		ingest.Module,

		fx.Invoke(func(cfg config.Config, svc ingestdomain.Service) {
			if req.FilePath == "" {
				req.FilePath = cfg.CSVPath
			}
			_, runErr = svc.Run(context.Background(), req)
		}),
	)

	if err := app.Err(); err != nil {
		return err
	}
	return runErr
}
