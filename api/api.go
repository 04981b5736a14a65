// Package api adapts API Gateway HTTP API (JWT authorizer) requests to the
// task store and query router.
//
// Routes:
//
//	POST   /users/{username}/todos           create an item
//	GET    /users/{username}/todos[?query=]  list or search items
//	PUT    /users/{username}/todos/{todoid}  patch title and/or description
//	DELETE /users/{username}/todos/{todoid}  delete an item
//
// The path username must equal the authenticated user name claim.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/tasks/internal/logging"
	"github.com/jacentio/tasks/query"
	"github.com/jacentio/tasks/search"
	"github.com/jacentio/tasks/store"
)

// Route keys handled by Route.
const (
	RouteRegister = "POST /users/{username}/todos"
	RouteQuery    = "GET /users/{username}/todos"
	RouteUpdate   = "PUT /users/{username}/todos/{todoid}"
	RouteDelete   = "DELETE /users/{username}/todos/{todoid}"
)

const (
	msgOK       = "OK"
	msgInvalid  = "Parameter is invalid."
	msgNotFound = "Not Found."
	msgInternal = "Internal Server Error."
)

var errInvalidParameter = errors.New("tasks: parameter is invalid")

// Items is the write side used by the handlers. *store.Store satisfies it.
type Items interface {
	Create(ctx context.Context, owner, title, description string) (store.Item, error)
	Update(ctx context.Context, owner, itemID string, patch store.Patch) error
	Delete(ctx context.Context, owner, itemID string) error
}

// Reader answers list and search reads. *query.Router satisfies it.
type Reader interface {
	Handle(ctx context.Context, owner string, text *string) ([]query.Item, error)
}

// Handler serves the task routes.
type Handler struct {
	items      Items
	reader     Reader
	ownerClaim string
	logger     *slog.Logger
}

// NewHandler creates a Handler that reads the owner from the "username" claim.
func NewHandler(items Items, reader Reader, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		items:      items,
		reader:     reader,
		ownerClaim: "username",
		logger:     logger,
	}
}

// SetOwnerClaim changes the JWT claim compared against the path username.
func (h *Handler) SetOwnerClaim(claim string) {
	if claim != "" {
		h.ownerClaim = claim
	}
}

type messageResponse struct {
	Message string `json:"message"`
	ItemID  string `json:"itemId,omitempty"`
}

type registerRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Route dispatches req by its route key.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) Route(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	switch req.RouteKey {
	case RouteRegister:
		return h.Register(ctx, req)
	case RouteQuery:
		return h.Query(ctx, req)
	case RouteUpdate:
		return h.Update(ctx, req)
	case RouteDelete:
		return h.Delete(ctx, req)
	default:
		logging.FromLambda(ctx, h.logger).Warn("unknown route", "routeKey", req.RouteKey)
		return respond(http.StatusNotFound, messageResponse{Message: msgNotFound}), nil
	}
}

// Register creates an item from a body carrying both title and description.
func (h *Handler) Register(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	logger := h.requestLogger(ctx, req)

	owner, err := h.owner(req)
	if err != nil {
		return h.failure(logger, err), nil
	}
	var body registerRequest
	if err := decodeBody(req, &body); err != nil {
		return h.failure(logger, err), nil
	}
	if body.Title == nil || body.Description == nil {
		return h.failure(logger, invalid("title and description are required")), nil
	}

	item, err := h.items.Create(ctx, owner, *body.Title, *body.Description)
	if err != nil {
		return h.failure(logger, err), nil
	}
	logger.Info("item registered", "itemId", item.ItemID)
	return respond(http.StatusOK, messageResponse{Message: msgOK, ItemID: item.ItemID}), nil
}

// Query lists the owner's items, or searches them when the query string
// parameter "query" is present.
func (h *Handler) Query(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	logger := h.requestLogger(ctx, req)

	owner, err := h.owner(req)
	if err != nil {
		return h.failure(logger, err), nil
	}
	var text *string
	if q, ok := req.QueryStringParameters["query"]; ok {
		text = &q
	}

	items, err := h.reader.Handle(ctx, owner, text)
	if err != nil {
		return h.failure(logger, err), nil
	}
	logger.Info("items queried", "count", len(items), "search", text != nil)
	return respond(http.StatusOK, items), nil
}

// Update patches the fields present in the body.
func (h *Handler) Update(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	logger := h.requestLogger(ctx, req)

	owner, err := h.owner(req)
	if err != nil {
		return h.failure(logger, err), nil
	}
	itemID, err := itemID(req)
	if err != nil {
		return h.failure(logger, err), nil
	}
	var body updateRequest
	if err := decodeBody(req, &body); err != nil {
		return h.failure(logger, err), nil
	}

	patch := store.Patch{
		Title:       store.FromPtr(body.Title),
		Description: store.FromPtr(body.Description),
	}
	if err := h.items.Update(ctx, owner, itemID, patch); err != nil {
		return h.failure(logger, err), nil
	}
	logger.Info("item updated", "itemId", itemID)
	return respond(http.StatusOK, messageResponse{Message: msgOK}), nil
}

// Delete removes an item. Deleting a missing item succeeds.
func (h *Handler) Delete(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	logger := h.requestLogger(ctx, req)

	owner, err := h.owner(req)
	if err != nil {
		return h.failure(logger, err), nil
	}
	itemID, err := itemID(req)
	if err != nil {
		return h.failure(logger, err), nil
	}

	if err := h.items.Delete(ctx, owner, itemID); err != nil {
		return h.failure(logger, err), nil
	}
	logger.Info("item deleted", "itemId", itemID)
	return respond(http.StatusOK, messageResponse{Message: msgOK}), nil
}

func (h *Handler) requestLogger(ctx context.Context, req events.APIGatewayV2HTTPRequest) *slog.Logger {
	logger := logging.FromLambda(ctx, h.logger).With("routeKey", req.RouteKey)
	logger.Debug("incoming request", "path", req.RawPath)
	return logger
}

// owner returns the path username once it is confirmed against the JWT claim.
func (h *Handler) owner(req events.APIGatewayV2HTTPRequest) (string, error) {
	username := req.PathParameters["username"]
	if username == "" {
		return "", invalid("path parameter username is not found")
	}
	auth := req.RequestContext.Authorizer
	if auth == nil || auth.JWT == nil {
		return "", invalid("request is not authenticated")
	}
	if auth.JWT.Claims[h.ownerClaim] != username {
		return "", invalid("authentication info does not match username")
	}
	return username, nil
}

func itemID(req events.APIGatewayV2HTTPRequest) (string, error) {
	id := req.PathParameters["todoid"]
	if id == "" {
		return "", invalid("path parameter todoid is not found")
	}
	return id, nil
}

func decodeBody(req events.APIGatewayV2HTTPRequest, v any) error {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return fmt.Errorf("%w: decode body: %w", errInvalidParameter, err)
		}
		body = decoded
	}
	if len(body) == 0 {
		return invalid("body is not found")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: parse body: %w", errInvalidParameter, err)
	}
	return nil
}

// failure logs err and maps it to a response.
func (h *Handler) failure(logger *slog.Logger, err error) events.APIGatewayV2HTTPResponse {
	status := statusOf(err)
	switch status {
	case http.StatusInternalServerError:
		logger.Error("request failed", "error", err)
		return respond(status, messageResponse{Message: msgInternal})
	case http.StatusNotFound:
		logger.Warn("item not found", "error", err)
		return respond(status, messageResponse{Message: msgNotFound})
	default:
		logger.Warn("invalid request", "error", err)
		return respond(status, messageResponse{Message: msgInvalid})
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidRequest),
		errors.Is(err, search.ErrInvalidQuery),
		errors.Is(err, errInvalidParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", errInvalidParameter, reason)
}

func respond(status int, body any) events.APIGatewayV2HTTPResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"message":"` + msgInternal + `"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}
