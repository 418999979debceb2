package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		year     *int
		semester *int
		combo    *string
		want     string
	}{
		{"first year physics", intPtr(1), nil, strPtr("physics"), "/dashboard1/physics"},
		{"first year chemistry", intPtr(1), nil, strPtr("chemistry"), "/dashboard1/chemistry"},
		{"first year combo case-insensitive", intPtr(1), intPtr(2), strPtr(" Chemistry "), "/dashboard1/chemistry"},
		{"first year without combo", intPtr(1), nil, nil, DefaultPath},
		{"first year unknown combo", intPtr(1), nil, strPtr("biology"), DefaultPath},
		{"second year odd semester", intPtr(2), intPtr(3), nil, "/dashboard2/dashboard21"},
		{"second year even semester", intPtr(2), intPtr(4), nil, "/dashboard2/dashboard22"},
		{"third year odd semester", intPtr(3), intPtr(5), nil, "/dashboard3/dashboard31"},
		{"third year even semester", intPtr(3), intPtr(6), nil, "/dashboard3/dashboard32"},
		{"fourth year odd semester", intPtr(4), intPtr(7), nil, "/dashboard4/dashboard41"},
		{"fourth year even semester", intPtr(4), intPtr(8), nil, "/dashboard4/dashboard42"},
		{"semester absent uses first half", intPtr(3), nil, nil, "/dashboard3/dashboard31"},
		{"semester from another year", intPtr(2), intPtr(5), nil, DefaultPath},
		{"year absent", nil, intPtr(3), nil, DefaultPath},
		{"year out of range", intPtr(5), intPtr(9), nil, DefaultPath},
		{"year zero", intPtr(0), nil, strPtr("physics"), DefaultPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.year, tt.semester, tt.combo))
		})
	}
}

func TestSemesterBelongsToYear(t *testing.T) {
	assert.True(t, SemesterBelongsToYear(1, 1))
	assert.True(t, SemesterBelongsToYear(1, 2))
	assert.True(t, SemesterBelongsToYear(4, 8))
	assert.False(t, SemesterBelongsToYear(2, 2))
	assert.False(t, SemesterBelongsToYear(3, 7))
}
