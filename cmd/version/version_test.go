package version

import "testing"

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"V2.3.4", "v2.3.4"},
		{"1.0.0-rc.1", "v1.0.0-rc.1"},
		{"nightly", "vnightly"},
		{"vnightly", "vnightly"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeVersion(tt.input); got != tt.expected {
				t.Errorf("NormalizeVersion(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatVersionForDisplay(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"v1.0.0", "v1.0.0"},
		{"1.0.0", "v1.0.0"},
		{"V1.0.0", "v1.0.0"},
		{"", "unknown"},
		{"dev", "dev"},
		{" 1.2.3 ", "v1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatVersionForDisplay(tt.input); got != tt.expected {
				t.Errorf("FormatVersionForDisplay(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPrerelease(t *testing.T) {
	if !Prerelease("v1.2.0-rc.1") {
		t.Error("v1.2.0-rc.1 should be a pre-release")
	}
	if Prerelease("v1.2.0") || Prerelease("dev") {
		t.Error("unexpected pre-release")
	}
}
