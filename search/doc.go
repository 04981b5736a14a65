// Package search is the full-text projection of task items, stored in an
// Amazon OpenSearch Service index and reached over SigV4-signed HTTP.
//
// Documents are addressed by item id alone. The owner is stored as a keyword
// field and every search is filtered on it. Upsert and Delete are idempotent
// so change-feed redelivery can replay them safely.
package search
