package store

// Config holds configuration for the Store.
type Config struct {
	// TableName is the DynamoDB table holding task items.
	// The table is keyed by owner (partition) and itemId (sort).
	// Default: "tasks"
	TableName string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		TableName: "tasks",
	}
}

// validate fills in defaults for empty values.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "tasks"
	}
}
