// Package query routes task list reads to the item store or the search index.
package query

import (
	"context"
	"strings"

	"github.com/jacentio/tasks/search"
	"github.com/jacentio/tasks/store"
)

// Lister reads every item of an owner. *store.Store satisfies it.
type Lister interface {
	Get(ctx context.Context, owner string) ([]store.Item, error)
}

// Searcher runs owner-scoped full-text searches. *search.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, owner, text string) ([]search.Document, error)
}

// Item is the backend-independent shape returned to readers.
type Item struct {
	ItemID         string `json:"itemId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	LastUpdateTime string `json:"lastUpdateTime,omitempty"`
}

// Router sends reads without query text to the store and reads with
// query text to the search index.
type Router struct {
	store  Lister
	search Searcher
}

// NewRouter creates a Router.
func NewRouter(store Lister, search Searcher) *Router {
	return &Router{store: store, search: search}
}

// Handle returns the owner's items, filtered by text when text is non-blank.
// Errors from either backend are returned unchanged.
//
// A listing returns every item the owner has. A search returns at most the
// search index's configured MaxResults matches (100 by default); further
// matches are dropped without notice.
func (r *Router) Handle(ctx context.Context, owner string, text *string) ([]Item, error) {
	if text == nil || strings.TrimSpace(*text) == "" {
		items, err := r.store.Get(ctx, owner)
		if err != nil {
			return nil, err
		}
		out := make([]Item, 0, len(items))
		for _, it := range items {
			out = append(out, Item{
				ItemID:         it.ItemID,
				Title:          it.Title,
				Description:    it.Description,
				LastUpdateTime: it.LastUpdateTime,
			})
		}
		return out, nil
	}

	docs, err := r.search.Search(ctx, owner, *text)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(docs))
	for _, d := range docs {
		out = append(out, Item{
			ItemID:         d.ItemID,
			Title:          d.Title,
			Description:    d.Description,
			LastUpdateTime: d.LastUpdateTime,
		})
	}
	return out, nil
}
