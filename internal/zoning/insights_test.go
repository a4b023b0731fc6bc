package zoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "A"},
		{80, "A"},
		{79, "B"},
		{70, "B"},
		{69, "C"},
		{60, "C"},
		{59, "D"},
		{50, "D"},
		{49, "E"},
		{0, "E"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score %d", tt.score)
	}
}

func TestGradeLabel(t *testing.T) {
	assert.Equal(t, "A - Excellent", GradeLabel(85))
	assert.Equal(t, "B - Good", GradeLabel(73))
	assert.Equal(t, "C - Fair", GradeLabel(68))
	assert.Equal(t, "D - Weak", GradeLabel(52))
	assert.Equal(t, "E - Poor", GradeLabel(0))
}

func TestNormalizedScore(t *testing.T) {
	assert.Equal(t, "0.75", NormalizedScore(75))
	assert.Equal(t, "0.70", NormalizedScore(70))
	assert.Equal(t, "0.00", NormalizedScore(0))
	assert.Equal(t, "1.00", NormalizedScore(100))
	assert.Equal(t, "0.05", NormalizedScore(5))
}

func TestInsights_Known(t *testing.T) {
	assert.False(t, Insights{}.Known())
	assert.False(t, Insights{Category: UnknownCategory}.Known())
	assert.True(t, Insights{Category: "transport"}.Known())
}
