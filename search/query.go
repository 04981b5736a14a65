package search

import "strings"

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// searchQuery builds the owner-scoped full-text query.
//
// A document matches when owner is equal and the text matches title or
// description either as analyzed terms or as a prefix of a term.
func searchQuery(owner, text string, size int) map[string]any {
	prefix := wildcardEscaper.Replace(strings.ToLower(text)) + "*"
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"owner": owner}},
				},
				"should": []any{
					map[string]any{"match": map[string]any{"title": text}},
					map[string]any{"match": map[string]any{"description": text}},
					map[string]any{"wildcard": map[string]any{"title": map[string]any{"value": prefix}}},
					map[string]any{"wildcard": map[string]any{"description": map[string]any{"value": prefix}}},
				},
				"minimum_should_match": 1,
			},
		},
	}
}
