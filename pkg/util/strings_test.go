package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		maxSize int
		want    string
	}{
		{"short string no truncation", "hello", 100, "hello"},
		{"exact length", "12345", 5, "12345"},
		{"one over", "123456", 5, "12345...(truncated)"},
		{"zero maxSize uses default", "hello", 0, "hello"},
		{"empty body", "", 10, ""},
		{"multibyte rune not split", "aé", 2, "a...(truncated)"},
		{"cut after multibyte rune", "éab", 2, "é...(truncated)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TruncateBody([]byte(tt.data), tt.maxSize))
		})
	}
}

func TestTruncateBody_DefaultMaxSize(t *testing.T) {
	t.Parallel()

	data := strings.Repeat("x", MaxLogBodySize+100)
	result := TruncateBody([]byte(data), 0)
	assert.Len(t, result, MaxLogBodySize+len(truncatedSuffix))

	short := data[:MaxLogBodySize]
	assert.Equal(t, short, TruncateBody([]byte(short), -1))
}
