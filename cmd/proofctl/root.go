package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/app"
	"github.com/upb/proof-layer/config"
	"github.com/upb/proof-layer/internal/observability"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "proofctl",
		Short:        "Retrieval with refusal over your own documents",
		SilenceUsage: true,
		Long: `proofctl drives the proof layer from the command line.

Configuration comes from the environment (and .env / CONFIG_FILE), exactly
as for the API gateway. Set STORE_BACKEND=sqlite to work without Postgres.`,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", observability.FormatConsole, "Log format (json or console)")

	root.AddCommand(
		newServeCmd(opts),
		newChunkCmd(),
		newIngestCmd(opts),
		newAskCmd(opts),
		newProcessEventCmd(opts),
		newTraceCmd(opts),
	)
	return root
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	return observability.NewLogger(o.logLevel, o.logFormat)
}

// loadDependencies loads configuration and wires the application
func (o *rootOptions) loadDependencies(ctx context.Context) (*app.Dependencies, error) {
	logger, err := o.logger()
	if err != nil {
		return nil, err
	}
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	return app.NewDependencies(ctx, cfg, logger)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
