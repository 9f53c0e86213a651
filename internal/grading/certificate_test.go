package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func grade(v float64) *float64 { return &v }

func TestShouldIssue(t *testing.T) {
	tests := []struct {
		name      string
		grade     *float64
		completed int
		earned    bool
		want      bool
	}{
		{name: "eligible", grade: grade(85.7), completed: 7, want: true},
		{name: "exactly at threshold", grade: grade(80), completed: 7, want: true},
		{name: "grade below", grade: grade(79.9), completed: 7},
		{name: "too few tests", grade: grade(95), completed: 6},
		{name: "no grade", grade: nil, completed: 7},
		{name: "already earned", grade: grade(99), completed: 7, earned: true},
		{name: "already earned after drop", grade: grade(40), completed: 7, earned: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIssue(tt.grade, tt.completed, tt.earned))
		})
	}
}

func TestPolicy_CustomThresholds(t *testing.T) {
	p := Policy{MinGrade: 60, RequiredTests: 2}
	assert.True(t, p.ShouldIssue(grade(60), 2, false))
	assert.False(t, p.ShouldIssue(grade(59.9), 2, false))
	assert.True(t, p.Eligible(grade(70), 3))
}
