package xp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core"
)

var milestones = []Milestone{
	{ID: "m3", Name: "Gold", XPRequired: 1000},
	{ID: "m1", Name: "Bronze", XPRequired: 100},
	{ID: "m2", Name: "Silver", XPRequired: 500},
}

func TestNextMilestone(t *testing.T) {
	tests := []struct {
		xp     int
		want   string
		wantOk bool
	}{
		{xp: 0, want: "m1", wantOk: true},
		{xp: 100, want: "m2", wantOk: true},
		{xp: 999, want: "m3", wantOk: true},
		{xp: 1000},
	}
	for _, tt := range tests {
		got, ok := NextMilestone(tt.xp, milestones)
		if ok != tt.wantOk || got.ID != tt.want {
			t.Errorf("NextMilestone(%d) = %q, %v, want %q, %v", tt.xp, got.ID, ok, tt.want, tt.wantOk)
		}
	}
	assert.Equal(t, "m3", milestones[0].ID, "input is left untouched")
}

func TestReached(t *testing.T) {
	got := Reached(600, milestones)
	assert.Equal(t, []string{"Bronze", "Silver"}, []string{got[0].Name, got[1].Name})
}

func TestAwardValidation(t *testing.T) {
	v := core.NewValidator()
	assert.Nil(t, v.Check(Award{UserID: "u2", Points: -50, Reason: "late homework"}))

	errs := v.Check(Award{UserID: "u2", Points: 0, Reason: " "})
	assert.Contains(t, errs, "points")
	assert.Contains(t, errs, "reason")
	assert.Contains(t, v.Check(Award{UserID: "u2", Points: 5000, Reason: "x"}), "points")
}
