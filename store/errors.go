package store

import "errors"

var (
	// ErrInvalidRequest is returned when caller-supplied data cannot form a valid
	// mutation, such as an update that supplies no fields.
	ErrInvalidRequest = errors.New("tasks: invalid request")

	// ErrNotFound is returned when an update targets an item that doesn't exist.
	ErrNotFound = errors.New("tasks: item not found")

	// ErrAlreadyExists is returned when a generated item id collides with an existing item.
	ErrAlreadyExists = errors.New("tasks: item already exists")

	// ErrStoreUnavailable wraps any failure talking to DynamoDB.
	ErrStoreUnavailable = errors.New("tasks: item store unavailable")
)
