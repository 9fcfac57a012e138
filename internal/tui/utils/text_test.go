package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateWithWidth(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "Short", 10, "Short"},
		{"ascii", "The Long Night Returns", 10, "The Lon..."},
		{"wide runes", "日本語のタイトル", 9, "日本語..."},
		{"tiny width", "Hello", 2, "He"},
		{"zero width", "Hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateWithWidth(tt.text, tt.width))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "abcdef", PadRight("abcdef", 4))
	assert.Equal(t, "日 ", PadRight("日", 3))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(0))
	assert.Equal(t, "0:00", FormatClock(-time.Second))
	assert.Equal(t, "1:05", FormatClock(65*time.Second))
	assert.Equal(t, "1:02:03", FormatClock(time.Hour+2*time.Minute+3*time.Second))
}
