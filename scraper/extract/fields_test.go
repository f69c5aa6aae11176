package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		in     string
		minLen int
		want   int
		ok     bool
	}{
		{"12345", 2, 12345, true},
		{"12", 2, 12, true},
		{"7", 2, 0, false},
		{"7", 1, 7, true},
		{"1,234", 2, 0, false},
		{"1.2万", 1, 0, false},
		{"", 0, 0, false},
		{" 12", 1, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCount(tt.in, tt.minLen)
		assert.Equal(t, tt.ok, ok, "ParseCount(%q, %d)", tt.in, tt.minLen)
		assert.Equal(t, tt.want, got, "ParseCount(%q, %d)", tt.in, tt.minLen)
		assert.Equal(t, tt.ok, AcceptCount(tt.minLen)(tt.in))
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"4.50", 4.5, true},
		{"10.0", 10, true},
		{"4", 0, false},
		{".5", 0, false},
		{"4.5分", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseRating(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseRating(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseRating(%q)", tt.in)
	}
}

func TestStarRating(t *testing.T) {
	tests := []struct {
		style string
		want  float64
	}{
		{"width: 100%", 5},
		{"width: 90%", 4.5},
		{"width:80%;", 4},
		{"width: 70%", 3.5},
		{"width: 0%", 0},
		{"60%", 3},
		{"", 0},
		{"height: 10px", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StarRating(tt.style), "StarRating(%q)", tt.style)
	}
}

func TestNormalizePublishDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-05-03 首次发表", "2024-05-03", true},
		{"2024-5-3 首次发表", "2024-5-3", true},
		{"2024/05/03 首次发表", "2024-05-03", true},
		{"2024.05.03 首次发表", "2024-05-03", true},
		{"发表于 2024-05-03", "2024-05-03", true},
		{"首次发表", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizePublishDate(tt.in)
		assert.Equal(t, tt.ok, ok, "NormalizePublishDate(%q)", tt.in)
		assert.Equal(t, tt.want, got, "NormalizePublishDate(%q)", tt.in)
	}
}

func TestLooseDate(t *testing.T) {
	d, ok := looseDate("2023-1-5")
	assert.True(t, ok)
	assert.Equal(t, "2023-1-5", d)

	d, ok = looseDate("更新 2023-01-05 首次发表")
	assert.True(t, ok)
	assert.Equal(t, "2023-01-05", d)

	_, ok = looseDate("价格 2023-01-05")
	assert.False(t, ok)
}
