package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	opensearch "github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v4/signer/awsv2"
)

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 512

// Client talks to one OpenSearch index.
type Client struct {
	api    *opensearchapi.Client
	config Config
}

// New creates a Client. Requests are signed with the credentials in awsCfg;
// without credentials they are sent unsigned, which is only useful against
// a local cluster. A region in config overrides the one in awsCfg.
//
// The client never retries; a failed write is redelivered by the change feed.
func New(awsCfg aws.Config, config Config) (*Client, error) {
	config.validate()

	osCfg := opensearch.Config{
		DisableRetry: true,
	}
	if config.Endpoint != "" {
		osCfg.Addresses = []string{config.Endpoint}
	}
	if awsCfg.Credentials != nil {
		if config.Region != "" {
			awsCfg.Region = config.Region
		}
		signer, err := awsv2.NewSignerWithService(awsCfg, config.Service)
		if err != nil {
			return nil, fmt.Errorf("create request signer: %w", err)
		}
		osCfg.Signer = signer
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{Client: osCfg})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Client{api: api, config: config}, nil
}

// Index returns the index name.
func (c *Client) Index() string {
	return c.config.Index
}

// Upsert creates or replaces the document stored under id.
func (c *Client) Upsert(ctx context.Context, id string, doc Document) error {
	if err := validID(id); err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	resp, err := c.api.Index(ctx, opensearchapi.IndexReq{
		Index:      c.config.Index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	})
	return check(http.MethodPut, c.docPath(id), response(resp), err)
}

// Delete removes the document stored under id. A missing document is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	resp, err := c.api.Document.Delete(ctx, opensearchapi.DocumentDeleteReq{
		Index:      c.config.Index,
		DocumentID: id,
	})
	return check(http.MethodDelete, c.docPath(id), response(resp), err, http.StatusNotFound)
}

// Get returns the document stored under id.
func (c *Client) Get(ctx context.Context, id string) (Document, error) {
	if err := validID(id); err != nil {
		return Document{}, err
	}
	resp, err := c.api.Document.Get(ctx, opensearchapi.DocumentGetReq{
		Index:      c.config.Index,
		DocumentID: id,
	})
	res := response(resp)
	if res != nil && res.StatusCode == http.StatusNotFound {
		return Document{}, ErrNotFound
	}
	if err := check(http.MethodGet, c.docPath(id), res, err); err != nil {
		return Document{}, err
	}
	if resp == nil {
		return Document{}, fmt.Errorf("%w: GET %s: empty response", ErrIndexUnavailable, c.docPath(id))
	}
	if !resp.Found {
		return Document{}, ErrNotFound
	}

	var doc Document
	if err := json.Unmarshal(resp.Source, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: decode document: %w", ErrIndexUnavailable, err)
	}
	return doc, nil
}

// Search returns the owner's documents whose title or description match text.
// At most Config.MaxResults documents are returned.
func (c *Client) Search(ctx context.Context, owner, text string) ([]Document, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidQuery)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is required", ErrInvalidQuery)
	}
	body, err := json.Marshal(searchQuery(owner, text, c.config.MaxResults))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	resp, err := c.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{c.config.Index},
		Body:    bytes.NewReader(body),
	})
	path := "/" + c.config.Index + "/_search"
	if err := check(http.MethodPost, path, response(resp), err); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: POST %s: empty response", ErrIndexUnavailable, path)
	}

	docs := make([]Document, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc Document
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode hit %s: %w", ErrIndexUnavailable, hit.ID, err)
		}
		if doc.ItemID == "" {
			doc.ItemID = hit.ID
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CreateIndex creates the index with its field mappings.
// An index that already exists is left as is.
func (c *Client) CreateIndex(ctx context.Context) error {
	body, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}
	resp, err := c.api.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: c.config.Index,
		Body:  bytes.NewReader(body),
	})
	err = check(http.MethodPut, "/"+c.config.Index, response(resp), err)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(statusErr.Body, "resource_already_exists_exception") {
		return nil
	}
	return err
}

// DeleteIndex drops the index. A missing index is not an error.
func (c *Client) DeleteIndex(ctx context.Context) error {
	resp, err := c.api.Indices.Delete(ctx, opensearchapi.IndicesDeleteReq{
		Indices: []string{c.config.Index},
	})
	return check(http.MethodDelete, "/"+c.config.Index, response(resp), err, http.StatusNotFound)
}

func (c *Client) docPath(id string) string {
	return "/" + c.config.Index + "/_doc/" + id
}

// validID rejects ids that cannot be addressed as a single path segment.
// Item ids are UUIDs, so this only trips on corrupt input.
func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, "/?#%") {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
	}
	return nil
}

// response returns the raw response behind a typed result, or nil when the
// request never got one.
func response[R any, P interface {
	*R
	Inspect() opensearchapi.Inspect
}](resp P) *opensearch.Response {
	if resp == nil {
		return nil
	}
	return resp.Inspect().Response
}

// check maps the outcome of one request to an error. 2xx statuses and the
// statuses in accept are success.
func check(method, path string, res *opensearch.Response, err error, accept ...int) error {
	if res == nil {
		if err == nil {
			return nil
		}
		return fmt.Errorf("%w: %s %s: %w", ErrIndexUnavailable, method, path, err)
	}
	status := res.StatusCode
	if status >= 200 && status < 300 && err == nil {
		return nil
	}
	for _, s := range accept {
		if status == s {
			return nil
		}
	}
	if status >= 200 && status < 300 {
		return fmt.Errorf("%w: %s %s: %w", ErrIndexUnavailable, method, path, err)
	}
	return statusError(method, path, status, errorBody(res, err))
}

// errorBody prefers the raw response body and falls back to the client's
// parsed error, which may already have consumed it.
func errorBody(res *opensearch.Response, err error) string {
	if res.Body != nil {
		if data, readErr := io.ReadAll(io.LimitReader(res.Body, maxErrorBody)); readErr == nil && len(data) > 0 {
			return string(data)
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func statusError(method, path string, status int, body string) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{Method: method, Path: path, StatusCode: status, Body: body}
}
