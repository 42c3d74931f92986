package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"cut", "hello world", 5, "hello..."},
		{"exact length", "gravity", 7, "gravity"},
		{"zero limit", "x", 0, "x"},
		{"negative limit", "ncert", -1, "ncert"},
		{"devanagari cut on rune boundary", "भौतिकी", 2, "भौ..."},
		{"bengali cut on rune boundary", "পদার্থবিজ্ঞান", 3, "পদা..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := map[string]string{
		"  newton's\n\tlaws   of motion ": "newton's laws of motion",
		" \n ":                              "",
		"class 10":                         "class 10",
	}
	for in, want := range tests {
		if got := CollapseSpace(in); got != want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNFC(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii unchanged", "physics", "physics"},
		{"precomposed yya decomposes", "রসায়ন", "রসায়ন"},
		{"precomposed rra decomposes", "ড়", "ড়"},
		{"precomposed rha decomposes", "ঢ়", "ঢ়"},
		{"decomposed stays", "য়", "য়"},
		{"o kar composes", "কো", "কো"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NFC(tt.in); got != tt.want {
				t.Errorf("NFC(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
