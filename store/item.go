package store

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names used in the items table.
const (
	AttrOwner          = "owner"
	AttrItemID         = "itemId"
	AttrTitle          = "title"
	AttrDescription    = "description"
	AttrLastUpdateTime = "lastUpdateTime"
)

// TimeLayout is the fixed-width UTC layout of lastUpdateTime.
// Fixed width keeps stored timestamps lexically ordered.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Item is one task belonging to one owner.
type Item struct {
	Owner          string `dynamodbav:"owner" json:"owner"`
	ItemID         string `dynamodbav:"itemId" json:"itemId"`
	Title          string `dynamodbav:"title" json:"title"`
	Description    string `dynamodbav:"description" json:"description"`
	LastUpdateTime string `dynamodbav:"lastUpdateTime" json:"lastUpdateTime"`
}

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// Key returns the primary key of the item identified by owner and itemID.
func Key(owner, itemID string) PK {
	return PK{
		AttrOwner:  &types.AttributeValueMemberS{Value: owner},
		AttrItemID: &types.AttributeValueMemberS{Value: itemID},
	}
}

// Optional is a value that is either supplied or not supplied.
// The zero value is not supplied.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a supplied Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an Optional that is not supplied.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a nil-able pointer into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value was supplied.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Patch is a sparse update request. Only supplied fields are written.
type Patch struct {
	Title       Optional[string]
	Description Optional[string]
}
