package store

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// Assignment sets one attribute to a value.
type Assignment struct {
	Attribute string
	Value     any
}

// Mutation is a fully formed set of attribute assignments for one item.
// A Mutation is immutable once built.
type Mutation struct {
	assignments []Assignment
}

// BuildUpdate translates a sparse Patch into the minimal Mutation.
//
// Only supplied fields are assigned, and lastUpdateTime is always assigned
// from now. A Patch that supplies no field is rejected with ErrInvalidRequest
// rather than producing a timestamp-only write.
func BuildUpdate(p Patch, now time.Time) (Mutation, error) {
	var assignments []Assignment
	if title, ok := p.Title.Get(); ok {
		assignments = append(assignments, Assignment{Attribute: AttrTitle, Value: title})
	}
	if description, ok := p.Description.Get(); ok {
		assignments = append(assignments, Assignment{Attribute: AttrDescription, Value: description})
	}
	if len(assignments) == 0 {
		return Mutation{}, fmt.Errorf("%w: update supplies neither title nor description", ErrInvalidRequest)
	}
	assignments = append(assignments, Assignment{Attribute: AttrLastUpdateTime, Value: FormatTime(now)})
	return Mutation{assignments: assignments}, nil
}

// Assignments returns a copy of the assignments in the order they are applied.
func (m Mutation) Assignments() []Assignment {
	return slices.Clone(m.assignments)
}

// Sets reports whether the mutation assigns attr.
func (m Mutation) Sets(attr string) bool {
	return slices.ContainsFunc(m.assignments, func(a Assignment) bool {
		return a.Attribute == attr
	})
}

// Expression renders the mutation as a DynamoDB update expression that only
// applies to an existing item.
func (m Mutation) Expression() (expression.Expression, error) {
	if len(m.assignments) == 0 {
		return expression.Expression{}, errors.New("tasks: empty mutation")
	}

	first := m.assignments[0]
	update := expression.Set(expression.Name(first.Attribute), expression.Value(first.Value))
	for _, a := range m.assignments[1:] {
		update = update.Set(expression.Name(a.Attribute), expression.Value(a.Value))
	}

	return expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(AttrItemID))).
		Build()
}
