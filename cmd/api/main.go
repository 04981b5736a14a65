// Command api is the Lambda function serving the task HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/tasks/api"
	"github.com/jacentio/tasks/config"
	"github.com/jacentio/tasks/internal/bootstrap"
	"github.com/jacentio/tasks/internal/logging"
	"github.com/jacentio/tasks/query"
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
	items, err := bootstrap.NewStore(awsCfg, cfg)
	if err != nil {
		fatal(logger, "invalid store config", err)
	}
	index, err := bootstrap.NewSearch(awsCfg, cfg)
	if err != nil {
		fatal(logger, "invalid search config", err)
	}

	handler := api.NewHandler(items, query.NewRouter(items, index), logger)
	handler.SetOwnerClaim(cfg.OwnerClaim)

	logger.Info("api starting", "table", items.TableName(), "index", index.Index())
	lambda.Start(handler.Route)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
