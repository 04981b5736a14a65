// Command projector is the Lambda function that projects the item table's
// change stream into the search index.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/tasks/config"
	"github.com/jacentio/tasks/internal/bootstrap"
	"github.com/jacentio/tasks/internal/logging"
	"github.com/jacentio/tasks/stream"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fatal(slog.Default(), "failed to load config", err)
	}
	logger := logging.New(cfg.LogLevel, os.Stdout)

	awsCfg, err := bootstrap.LoadAWS(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		fatal(logger, "failed to load aws config", err)
	}
	index, err := bootstrap.NewSearch(awsCfg, cfg)
	if err != nil {
		fatal(logger, "invalid search config", err)
	}

	projector := stream.NewProjector(index, cfg.ProjectorConcurrency, logger)
	handler := stream.NewHandler(projector, logger)
	handler.SetReportBatchItemFailures(cfg.ReportBatchItemFailures)

	logger.Info("projector starting",
		"index", index.Index(),
		"concurrency", cfg.ProjectorConcurrency,
		"reportBatchItemFailures", cfg.ReportBatchItemFailures,
	)
	lambda.Start(handler.HandleDynamoDBEvent)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
