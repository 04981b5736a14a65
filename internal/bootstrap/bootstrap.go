// Package bootstrap constructs the process-wide AWS clients shared by the
// Lambda entry points and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/tasks/config"
	"github.com/jacentio/tasks/search"
	"github.com/jacentio/tasks/store"
)

// Options adjust how the AWS configuration is loaded.
type Options struct {
	// Profile selects a shared config profile.
	Profile string

	// AccessKeyID and SecretAccessKey, when both set, replace the default
	// credential chain with static credentials.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// LoadAWS loads the AWS SDK configuration once per process.
// A region in cfg overrides the one from the environment or profile.
func LoadAWS(ctx context.Context, cfg config.Config, opts Options) (aws.Config, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewStore builds the item store on a DynamoDB client from awsCfg.
func NewStore(awsCfg aws.Config, cfg config.Config) (*store.Store, error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, err
	}
	return store.New(dynamodb.NewFromConfig(awsCfg), cfg.Store()), nil
}

// NewSearch builds the search index client, signing with awsCfg credentials.
func NewSearch(awsCfg aws.Config, cfg config.Config) (*search.Client, error) {
	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}
	if err := cfg.RequireSearch(); err != nil {
		return nil, err
	}
	return search.New(awsCfg, cfg.Search())
}
