package search_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/jacentio/tasks/search"
)

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// fakeOpenSearch is a minimal in-memory stand-in for one OpenSearch index.
type fakeOpenSearch struct {
	mu       sync.Mutex
	index    string
	docs     map[string]search.Document
	requests []recordedRequest
	fail     int // status returned for every request when non-zero
	exists   bool
}

func newFakeOpenSearch(t *testing.T, index string) (*fakeOpenSearch, *httptest.Server) {
	t.Helper()
	f := &fakeOpenSearch{index: index, docs: map[string]search.Document{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeOpenSearch) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.requests = append(f.requests, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.EscapedPath(),
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})

	if f.fail != 0 {
		w.WriteHeader(f.fail)
		_, _ = w.Write([]byte(`{"error":"injected"}`))
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1:
		f.serveIndex(w, r)
	case len(parts) == 2 && parts[1] == "_search" && r.Method == http.MethodPost:
		f.serveSearch(w, body)
	case len(parts) == 3 && parts[1] == "_doc":
		f.serveDoc(w, r, parts[2], body)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeOpenSearch) serveIndex(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		if f.exists {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception","reason":"index [tasks] already exists"},"status":400}`))
			return
		}
		f.exists = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case http.MethodDelete:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.exists = false
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	}
}

func (f *fakeOpenSearch) serveDoc(w http.ResponseWriter, r *http.Request, id string, body []byte) {
	switch r.Method {
	case http.MethodPut:
		var doc search.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, existed := f.docs[id]
		f.docs[id] = doc
		if existed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
	case http.MethodDelete:
		if _, ok := f.docs[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.docs, id)
	case http.MethodGet:
		doc, ok := f.docs[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"found": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"found": true, "_id": id, "_source": doc})
	}
}

func (f *fakeOpenSearch) serveSearch(w http.ResponseWriter, body []byte) {
	var q struct {
		Query struct {
			Bool struct {
				Filter []struct {
					Term map[string]string `json:"term"`
				} `json:"filter"`
				Should []struct {
					Match map[string]string `json:"match"`
				} `json:"should"`
			} `json:"bool"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &q); err != nil || len(q.Query.Bool.Filter) == 0 || len(q.Query.Bool.Should) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	owner := q.Query.Bool.Filter[0].Term["owner"]
	text := strings.ToLower(q.Query.Bool.Should[0].Match["title"])

	ids := make([]string, 0, len(f.docs))
	for id := range f.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	hits := []map[string]any{}
	for _, id := range ids {
		doc := f.docs[id]
		if doc.Owner != owner || !matches(doc, text) {
			continue
		}
		hits = append(hits, map[string]any{"_id": id, "_source": doc})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})
}

// matches approximates the match-or-prefix query against whitespace tokens.
func matches(doc search.Document, text string) bool {
	terms := strings.Fields(strings.ToLower(doc.Title + " " + doc.Description))
	for _, want := range strings.Fields(text) {
		for _, term := range terms {
			if term == want {
				return true
			}
		}
	}
	for _, term := range terms {
		if strings.HasPrefix(term, text) {
			return true
		}
	}
	return false
}

func (f *fakeOpenSearch) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}
