package stream_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jacentio/tasks/search"
)

var errInjected = errors.New("injected index failure")

// memIndex is an in-memory index that records the order of calls per id.
type memIndex struct {
	mu      sync.Mutex
	docs    map[string]search.Document
	calls   map[string][]string
	failIDs map[string]bool
}

func newMemIndex() *memIndex {
	return &memIndex{
		docs:    map[string]search.Document{},
		calls:   map[string][]string{},
		failIDs: map[string]bool{},
	}
}

func (m *memIndex) Upsert(_ context.Context, id string, doc search.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[id] = append(m.calls[id], "upsert:"+doc.Title)
	if m.failIDs[id] {
		return errInjected
	}
	m.docs[id] = doc
	return nil
}

func (m *memIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[id] = append(m.calls[id], "delete")
	if m.failIDs[id] {
		return errInjected
	}
	delete(m.docs, id)
	return nil
}

// Search matches whole words or word prefixes, scoped to owner.
func (m *memIndex) Search(_ context.Context, owner, text string) ([]search.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text = strings.ToLower(text)
	var out []search.Document
	for _, doc := range m.docs {
		if doc.Owner != owner {
			continue
		}
		for _, term := range strings.Fields(strings.ToLower(doc.Title + " " + doc.Description)) {
			if strings.HasPrefix(term, text) {
				out = append(out, doc)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (m *memIndex) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += len(c)
	}
	return n
}
