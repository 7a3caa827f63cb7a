package textutil

import "testing"

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"my_char-01", "My Char 01"},
		{"Video1", "Video1"},
		{"alice.face.v2", "Alice Face V2"},
		{"  spaced   out  ", "Spaced Out"},
		{"___", "Unknown"},
		{"", "Unknown"},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPassLabel(t *testing.T) {
	if got := PassLabel(2, "alice_smith"); got != "Pass 2 (Alice Smith)" {
		t.Errorf("PassLabel = %q", got)
	}
	if got := PassLabel(1, "  "); got != "Pass 1" {
		t.Errorf("PassLabel without character = %q", got)
	}
}
