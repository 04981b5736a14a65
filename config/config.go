// Package config loads process configuration from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jacentio/tasks/search"
	"github.com/jacentio/tasks/store"
)

// Keys understood by NewViper, with the environment variables bound to each.
// The first variables match the original CDK deployment.
var envBindings = map[string][]string{
	"table_name":                 {"TODO_TABLE_NAME", "TABLE_NAME"},
	"region":                     {"REGION", "AWS_REGION"},
	"search_endpoint":            {"OS_DOMAIN", "SEARCH_ENDPOINT"},
	"search_index":               {"OS_INDEX", "SEARCH_INDEX"},
	"log_level":                  {"LOG_LEVEL"},
	"projector_concurrency":      {"PROJECTOR_CONCURRENCY"},
	"report_batch_item_failures": {"REPORT_BATCH_ITEM_FAILURES"},
	"owner_claim":                {"OWNER_CLAIM"},
}

// Config is the resolved process configuration.
type Config struct {
	TableName               string
	Region                  string
	SearchEndpoint          string
	SearchIndex             string
	LogLevel                string
	ProjectorConcurrency    int
	ReportBatchItemFailures bool

	// OwnerClaim is the JWT claim holding the caller's user name.
	OwnerClaim string
}

// NewViper returns a viper instance with defaults and environment bindings.
// Callers may bind flags onto it before calling FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("table_name", store.DefaultConfig().TableName)
	v.SetDefault("log_level", "info")
	v.SetDefault("projector_concurrency", 1)
	v.SetDefault("report_batch_item_failures", false)
	v.SetDefault("owner_claim", "username")
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	return v
}

// Load reads configuration from the environment and, when path is set, a file.
func Load(path string) (Config, error) {
	return FromViper(NewViper(), path)
}

// FromViper resolves a Config from v, reading the file at path first when set.
func FromViper(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		TableName:               v.GetString("table_name"),
		Region:                  v.GetString("region"),
		SearchEndpoint:          v.GetString("search_endpoint"),
		SearchIndex:             v.GetString("search_index"),
		LogLevel:                v.GetString("log_level"),
		ProjectorConcurrency:    v.GetInt("projector_concurrency"),
		ReportBatchItemFailures: v.GetBool("report_batch_item_failures"),
		OwnerClaim:              v.GetString("owner_claim"),
	}
	if cfg.SearchIndex == "" {
		// The index is named after the table unless overridden.
		cfg.SearchIndex = strings.ToLower(cfg.TableName)
	}
	if cfg.ProjectorConcurrency < 1 {
		return Config{}, fmt.Errorf("projector_concurrency must be at least 1, got %d", cfg.ProjectorConcurrency)
	}
	return cfg, nil
}

// RequireStore fails when the table cannot be addressed with cfg.
func (c Config) RequireStore() error {
	if c.TableName == "" {
		return errors.New("table name is not set (TODO_TABLE_NAME)")
	}
	return nil
}

// RequireSearch fails when the search index cannot be reached with cfg.
func (c Config) RequireSearch() error {
	var errs []error
	if c.SearchEndpoint == "" {
		errs = append(errs, errors.New("search endpoint is not set (OS_DOMAIN)"))
	}
	if c.SearchIndex == "" {
		errs = append(errs, errors.New("search index is not set (OS_INDEX)"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("region is not set (REGION or AWS_REGION)"))
	}
	return errors.Join(errs...)
}

// Store returns the store configuration.
func (c Config) Store() store.Config {
	return store.Config{TableName: c.TableName}
}

// Search returns the search client configuration.
func (c Config) Search() search.Config {
	cfg := search.DefaultConfig()
	cfg.Endpoint = c.SearchEndpoint
	cfg.Index = c.SearchIndex
	cfg.Region = c.Region
	return cfg
}
