package search

import "strings"

// Config holds configuration for the search Client.
type Config struct {
	// Endpoint is the domain endpoint, with or without scheme.
	// A bare host is treated as https.
	Endpoint string

	// Index is the index name. OpenSearch requires lower case.
	// Default: "tasks"
	Index string

	// Region is the AWS region used for request signing.
	Region string

	// Service is the SigV4 signing name.
	// Default: "es"
	Service string

	// MaxResults caps the number of documents returned by Search.
	// Matches beyond the cap are dropped, not paged.
	// Default: 100
	MaxResults int
}

// DefaultConfig returns defaults for everything except Endpoint and Region.
func DefaultConfig() Config {
	return Config{
		Index:      "tasks",
		Service:    "es",
		MaxResults: 100,
	}
}

func (c *Config) validate() {
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if c.Endpoint != "" && !strings.Contains(c.Endpoint, "://") {
		c.Endpoint = "https://" + c.Endpoint
	}
	c.Index = strings.ToLower(c.Index)
	if c.Index == "" {
		c.Index = "tasks"
	}
	if c.Service == "" {
		c.Service = "es"
	}
	if c.MaxResults < 1 {
		c.MaxResults = 100
	}
}
