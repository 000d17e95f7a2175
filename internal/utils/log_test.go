package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit drops everything", input: "model reply", limit: 0, expect: ""},
		{name: "short reply kept", input: "Hi Acme team", limit: 40, expect: "Hi Acme team"},
		{name: "long reply cut", input: "Hi Acme team, I am writing", limit: 12, expect: "Hi Acme team..."},
		{name: "surrounding whitespace ignored", input: "\n  Dear team  \n", limit: 4, expect: "Dear..."},
		{name: "cuts on runes", input: "Größe Zürich", limit: 5, expect: "Größe..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"":                                0,
		"   ":                             0,
		"  one two\n\nthree\t":            3,
		"Hi team,\nI'd like to connect.": 6,
	}
	for input, want := range tests {
		if got := WordCount(input); got != want {
			t.Fatalf("WordCount(%q) = %d, want %d", input, got, want)
		}
	}
}
