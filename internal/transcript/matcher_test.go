package transcript

import "testing"

func TestIsMatch(t *testing.T) {
	tests := []struct {
		input     string
		canonical string
		want      bool
	}{
		{"  Boston ", "boston", true},
		{"bostn", "boston", false},
		{"NINE   o'clock", "nine o'clock", true},
		{"dont", "don't", true},
		{"dont", "don’t", true},
		{"don't", "don’t", true},
		{"don't", "dont", false},
		{"tickets", "ticket", false},
		{"well-known", "well known", false},
		{"", "boston", false},
		{"\tthe  report\n", "The report", true},
	}
	for _, tt := range tests {
		if got := IsMatch(tt.input, tt.canonical); got != tt.want {
			t.Errorf("IsMatch(%q, %q) = %v, want %v", tt.input, tt.canonical, got, tt.want)
		}
	}
}

func TestIsMatchReflexive(t *testing.T) {
	answers := []string{"Boston", "nine thirty", "Mr. Lee", "ACME Corp.", "  spaced  out "}
	for _, a := range answers {
		if !IsMatch(a, a) {
			t.Fatalf("expected %q to match itself", a)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  The \t Quarterly\nREPORT "); got != "the quarterly report" {
		t.Fatalf("Normalize = %q", got)
	}
}
