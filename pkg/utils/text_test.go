package utils

import "testing"

func TestLeadingTerms(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"fewer words than n", "class struggle", 5, "class struggle"},
		{"truncates to n", "the history of all hitherto existing society", 3, "the history of"},
		{"collapses whitespace", "a  b\tc", 3, "a b c"},
		{"zero n", "anything", 0, ""},
		{"empty text", "", 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LeadingTerms(tt.text, tt.n); got != tt.want {
				t.Errorf("LeadingTerms(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate() = %q, want unchanged", got)
	}
	if got := Truncate("a longer sentence here", 10); got != "a longe..." {
		t.Errorf("Truncate() = %q, want %q", got, "a longe...")
	}
	if got := Truncate("abc", 0); got != "" {
		t.Errorf("Truncate() with max 0 = %q, want empty", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens("12345678"); got != 2 {
		t.Errorf("EstimateTokens() = %d, want 2", got)
	}
}
