package utils

import "testing"

func TestFormatCoord(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0"},
		{30, "30"},
		{12.5, "12.5"},
		{1.0 / 3.0, "0.333"},
		{-2.25, "-2.25"},
		{-0.0001, "0"},
		{99.9996, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatCoord(tt.input)
			if result != tt.expected {
				t.Errorf("FormatCoord(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		input    float64
		scale    int
		expected int
	}{
		{1, 64, 64},
		{0.5, 64, 32},
		{10.01, 64, 641},
		{-1.5, 10, -15},
	}

	for _, tt := range tests {
		result := ToFixed(tt.input, tt.scale)
		if result != tt.expected {
			t.Errorf("ToFixed(%f, %d) = %d, want %d", tt.input, tt.scale, result, tt.expected)
		}
	}
}
