package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unknown"},
		{"   ", "unknown"},
		{"Movie", "movie"},
		{"The Matrix (1999)", "the_matrix__1999"},
		{"Amélie", "am_lie"},
		{"__--", "unknown"},
		{"a-b_c", "a-b_c"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.in); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
