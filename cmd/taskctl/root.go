package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"github.com/jacentio/tasks/config"
	"github.com/jacentio/tasks/internal/bootstrap"
	"github.com/jacentio/tasks/internal/logging"
)

var (
	configPath string
	awsProfile string

	v = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Manage the task table's search projection",
	Long: `taskctl manages the OpenSearch index that mirrors the task table.

Settings come from flags, the environment (TODO_TABLE_NAME, OS_DOMAIN,
OS_INDEX, REGION, LOG_LEVEL) and an optional config file, in that order
of precedence.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (yaml, toml or json)")
	flags.StringVar(&awsProfile, "profile", "", "AWS shared config profile")
	flags.String("table", "", "DynamoDB table name")
	flags.String("endpoint", "", "OpenSearch domain endpoint")
	flags.String("index", "", "OpenSearch index name (defaults to the table name)")
	flags.String("region", "", "AWS region")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	bindFlag(rootCmd, "table_name", "table")
	bindFlag(rootCmd, "search_endpoint", "endpoint")
	bindFlag(rootCmd, "search_index", "index")
	bindFlag(rootCmd, "region", "region")
	bindFlag(rootCmd, "log_level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// env holds what a subcommand needs to reach AWS.
type env struct {
	cfg    config.Config
	aws    aws.Config
	logger *slog.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.FromViper(v, configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	awsCfg, err := bootstrap.LoadAWS(ctx, cfg, bootstrap.Options{Profile: awsProfile})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, aws: awsCfg, logger: logger}, nil
}
