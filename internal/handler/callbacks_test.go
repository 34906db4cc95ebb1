package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "test_data",
			expected: "test_data",
		},
		{
			name:     "string with whitespace",
			input:    "  test_data  ",
			expected: "test_data",
		},
		{
			name:     "string with newline",
			input:    "test\ndata",
			expected: "testdata",
		},
		{
			name:     "string with tab",
			input:    "test\tdata",
			expected: "testdata",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "test\x00data\x01",
			expected: "testdata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name           string
		data           string
		expectedAction string
		expectedArgs   []string
	}{
		{
			name:           "card",
			data:           "card_12",
			expectedAction: "card",
			expectedArgs:   []string{"12"},
		},
		{
			name:           "chunk",
			data:           "chunk_3_1",
			expectedAction: "chunk",
			expectedArgs:   []string{"3", "1"},
		},
		{
			name:           "replay keeps uuid",
			data:           "replay_5b1f0c0e-7a43-4b7e-9d7b-1d2b5b7f8d10",
			expectedAction: "replay",
			expectedArgs:   []string{"5b1f0c0e-7a43-4b7e-9d7b-1d2b5b7f8d10"},
		},
		{
			name:           "no args",
			data:           "random",
			expectedAction: "random",
			expectedArgs:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, args := parseCallback(tt.data)
			assert.Equal(t, tt.expectedAction, action)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestIntArg(t *testing.T) {
	n, ok := intArg([]string{"7", "x"}, 0)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = intArg([]string{"7", "x"}, 1)
	assert.False(t, ok)

	_, ok = intArg([]string{"7"}, 3)
	assert.False(t, ok)
}

func TestCleanCallbackData_DataButtonPrefix(t *testing.T) {
	action, args := parseCallback(cleanCallbackData("\fday_20240102"))
	assert.Equal(t, "day", action)
	assert.Equal(t, []string{"20240102"}, args)
}
