package models

import (
	"testing"
	"time"
)

func TestTouch(t *testing.T) {
	var ts Timestamps
	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	ts.Touch(first)
	if !ts.CreatedAt.Equal(first) || !ts.UpdatedAt.Equal(first) {
		t.Fatalf("after first touch: %+v", ts)
	}

	second := first.Add(time.Hour)
	ts.Touch(second)
	if !ts.CreatedAt.Equal(first) {
		t.Errorf("created_at moved to %v", ts.CreatedAt)
	}
	if !ts.UpdatedAt.Equal(second) {
		t.Errorf("updated_at = %v, want %v", ts.UpdatedAt, second)
	}
}

func TestIDs(t *testing.T) {
	if got := IDs[*Tag](nil); got != nil {
		t.Errorf("IDs(nil) = %v, want nil", got)
	}
	if got := IDs([]*Tag{}); got == nil || len(got) != 0 {
		t.Errorf("IDs(empty) = %v, want empty non-nil", got)
	}
	got := IDs([]*Tag{{ID: 3}, {ID: 9}})
	if len(got) != 2 || got[0] != 3 || got[1] != 9 {
		t.Errorf("IDs = %v", got)
	}
}
