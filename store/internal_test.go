package store

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var fixedNow = time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

// --- BuildUpdate Tests ---

func TestBuildUpdate_CaseTable(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		want  []string
	}{
		{
			name:  "title and description",
			patch: Patch{Title: Some("t"), Description: Some("d")},
			want:  []string{AttrTitle, AttrDescription, AttrLastUpdateTime},
		},
		{
			name:  "title only",
			patch: Patch{Title: Some("t")},
			want:  []string{AttrTitle, AttrLastUpdateTime},
		},
		{
			name:  "description only",
			patch: Patch{Description: Some("d")},
			want:  []string{AttrDescription, AttrLastUpdateTime},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildUpdate(tt.patch, fixedNow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := m.Assignments()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d assignments, got %d: %v", len(tt.want), len(got), got)
			}
			for i, attr := range tt.want {
				if got[i].Attribute != attr {
					t.Errorf("assignment %d: expected %q, got %q", i, attr, got[i].Attribute)
				}
			}
		})
	}
}

func TestBuildUpdate_NothingSupplied(t *testing.T) {
	_, err := BuildUpdate(Patch{}, fixedNow)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestBuildUpdate_EmptyStringIsSupplied(t *testing.T) {
	m, err := BuildUpdate(Patch{Description: Some("")}, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Sets(AttrDescription) {
		t.Error("expected empty description to be assigned")
	}
	if m.Sets(AttrTitle) {
		t.Error("expected title to be left alone")
	}
}

func TestBuildUpdate_TimestampFromClock(t *testing.T) {
	m, err := BuildUpdate(Patch{Title: Some("t")}, fixedNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Assignments()
	last := got[len(got)-1]
	if last.Value != "2024-03-01T12:30:45.123Z" {
		t.Errorf("expected timestamp '2024-03-01T12:30:45.123Z', got %v", last.Value)
	}
}

func TestMutation_AssignmentsIsCopy(t *testing.T) {
	m, _ := BuildUpdate(Patch{Title: Some("t")}, fixedNow)
	got := m.Assignments()
	got[0].Value = "changed"

	if m.Assignments()[0].Value != "t" {
		t.Error("expected mutation to be unaffected by caller changes")
	}
}

// --- Mutation.Expression Tests ---

func TestMutation_Expression_TitleOnly(t *testing.T) {
	m, _ := BuildUpdate(Patch{Title: Some("buy oat milk")}, fixedNow)
	expr, err := m.Expression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := map[string]bool{}
	for _, n := range expr.Names() {
		names[n] = true
	}
	if !names[AttrTitle] || !names[AttrLastUpdateTime] {
		t.Errorf("expected title and lastUpdateTime in names, got %v", names)
	}
	if names[AttrDescription] {
		t.Error("description must not appear in a title-only update")
	}
	if !names[AttrItemID] {
		t.Error("expected existence condition on itemId")
	}

	values := map[string]bool{}
	for _, v := range expr.Values() {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			values[s.Value] = true
		}
	}
	if !values["buy oat milk"] || !values["2024-03-01T12:30:45.123Z"] {
		t.Errorf("unexpected values %v", values)
	}
	if len(expr.Values()) != 2 {
		t.Errorf("expected 2 values, got %d", len(expr.Values()))
	}
	if expr.Update() == nil || expr.Condition() == nil {
		t.Error("expected both update and condition expressions")
	}
}

func TestMutation_Expression_Empty(t *testing.T) {
	if _, err := (Mutation{}).Expression(); err == nil {
		t.Error("expected error for empty mutation")
	}
}

// --- Optional Tests ---

func TestOptional(t *testing.T) {
	if None[string]().IsSet() {
		t.Error("None must not be set")
	}
	var zero Optional[string]
	if zero.IsSet() {
		t.Error("zero value must not be set")
	}
	v, ok := Some("x").Get()
	if !ok || v != "x" {
		t.Errorf("expected (x, true), got (%q, %v)", v, ok)
	}

	s := "y"
	if v, ok := FromPtr(&s).Get(); !ok || v != "y" {
		t.Errorf("expected (y, true), got (%q, %v)", v, ok)
	}
	if FromPtr[string](nil).IsSet() {
		t.Error("nil pointer must not be set")
	}
}

// --- unavailable Tests ---

func TestUnavailable_WrapsBoth(t *testing.T) {
	cause := &types.ProvisionedThroughputExceededException{}
	err := unavailable("put item", cause)

	if !errors.Is(err, ErrStoreUnavailable) {
		t.Error("expected ErrStoreUnavailable")
	}
	var target *types.ProvisionedThroughputExceededException
	if !errors.As(err, &target) {
		t.Error("expected SDK error to remain reachable")
	}
}

func TestFormatTime_FixedWidth(t *testing.T) {
	got := FormatTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("JST", 9*3600)))
	if got != "2024-01-01T18:04:05.000Z" {
		t.Errorf("expected UTC fixed width, got %q", got)
	}
}
