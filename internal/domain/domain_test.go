package domain

import "testing"

func TestEligibleForAutoSubmit(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"    ", false},
		{"1234", false},
		{"  1234  ", false},
		{"12345", true},
		{" AB12345 ", true},
		{"ఎబి123", true},
	}

	for _, tt := range tests {
		if got := EligibleForAutoSubmit(tt.raw, DefaultMinIdentifierLength); got != tt.want {
			t.Errorf("EligibleForAutoSubmit(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestPrintSlipDestinationEscapes(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"A99", "/print_slip/A99"},
		{"42", "/print_slip/42"},
		{"a/b c", "/print_slip/a%2Fb%20c"},
	}

	for _, tt := range tests {
		if got := PrintSlipDestination(tt.id); got != tt.want {
			t.Errorf("PrintSlipDestination(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestOutcomeStatusKind(t *testing.T) {
	if (Outcome{Kind: OutcomeSuccess}).StatusKind() != StatusSuccess {
		t.Fatal("expected success status for success outcome")
	}
	if (Outcome{Kind: OutcomeFailure}).StatusKind() != StatusError {
		t.Fatal("expected error status for failure outcome")
	}
	if InFlight.String() != "in_flight" || Idle.String() != "idle" {
		t.Fatal("unexpected submission state names")
	}
}
