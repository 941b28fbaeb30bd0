package tui

import "testing"

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcd", "****"},
		{"secret-key-1234", "***********1234"},
	}

	for _, tt := range tests {
		if got := MaskKey(tt.key); got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestValidateCoordinate(t *testing.T) {
	for _, ok := range []string{"33.5902", " 130.4017 ", "-33", "0"} {
		if err := validateCoordinate(ok); err != nil {
			t.Errorf("expected %q to be accepted, got %v", ok, err)
		}
	}
	for _, bad := range []string{"", "north", "33,59"} {
		if err := validateCoordinate(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestAccentColorDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)

	if got := AccentColor(); got != DefaultAccent {
		t.Errorf("expected default accent %q, got %q", DefaultAccent, got)
	}
}
