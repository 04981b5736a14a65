// Package store provides the primary DynamoDB item store for task lists.
//
// Items are keyed by (owner, itemId). The store is the source of truth; the
// search projection in package stream is derived from its change feed.
//
// # Partial updates
//
// [Store.Update] takes a [Patch] whose fields are [Optional]. [BuildUpdate]
// turns it into an immutable [Mutation] that assigns only the supplied
// fields plus lastUpdateTime:
//
//	patch := store.Patch{Title: store.Some("buy oat milk")}
//	err := s.Update(ctx, "alice", "t1", patch) // description is untouched
//
// A patch with no supplied fields fails with [ErrInvalidRequest] and never
// reaches DynamoDB.
//
// # Errors
//
//   - [ErrInvalidRequest] - update supplies no fields
//   - [ErrNotFound] - update targets a missing item
//   - [ErrAlreadyExists] - generated id collided on create
//   - [ErrStoreUnavailable] - DynamoDB call failed (wraps the SDK error)
package store
