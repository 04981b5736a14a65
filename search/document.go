package search

// Document is the index representation of a task item.
type Document struct {
	Owner          string `json:"owner"`
	ItemID         string `json:"itemId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	LastUpdateTime string `json:"lastUpdateTime,omitempty"`
}

// indexMapping is the body used by CreateIndex.
func indexMapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"owner":          map[string]any{"type": "keyword"},
				"itemId":         map[string]any{"type": "keyword"},
				"title":          map[string]any{"type": "text"},
				"description":    map[string]any{"type": "text"},
				"lastUpdateTime": map[string]any{"type": "date"},
			},
		},
	}
}
