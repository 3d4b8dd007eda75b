package postgres

import "testing"

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"math":     "%math%",
		"50%":      `%50\%%`,
		"snake_go": `%snake\_go%`,
		`a\b`:      `%a\\b%`,
	}

	for in, want := range tests {
		if got := ContainsPattern(in); got != want {
			t.Fatalf("ContainsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
