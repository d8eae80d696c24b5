// Command ingest-worker is the Lambda entrypoint that ingests objects named
// by S3 notifications delivered through SQS.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/app"
	"github.com/upb/proof-layer/config"
	"github.com/upb/proof-layer/internal/observability"
	"github.com/upb/proof-layer/worker"
)

func main() {
	logger, err := observability.NewLogger(os.Getenv("LOG_LEVEL"), observability.FormatJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	h, err := newHandler(context.Background(), logger)
	if err != nil {
		logger.Fatal("ingest-worker init failed", zap.Error(err))
	}

	lambda.Start(h.HandleSQS)
}

func newHandler(ctx context.Context, logger *zap.Logger) (*worker.Handler, error) {
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return worker.NewHandler(deps.Ingest, logger), nil
}
