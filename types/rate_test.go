package types

import "testing"

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want Rate
	}{
		{"0.0003", 30_000},
		{"1", RateScale},
		{"0.00000001", 1},
		{"2.5", 250_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			if err != nil {
				t.Fatalf("ParseRate(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRate(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRateRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"zero", "0"},
		{"negative", "-0.0003"},
		{"too precise", "0.000000001"},
		{"not a number", "abc"},
		{"out of range", "1000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRate(tt.in); err == nil {
				t.Errorf("ParseRate(%q) accepted, want error", tt.in)
			}
		})
	}
}

func TestRateString(t *testing.T) {
	tests := []struct {
		rate Rate
		want string
	}{
		{30_000, "0.0003"},
		{RateScale, "1"},
		{1, "0.00000001"},
	}

	for _, tt := range tests {
		if got := tt.rate.String(); got != tt.want {
			t.Errorf("Rate(%d).String() = %q, want %q", tt.rate, got, tt.want)
		}
	}
}
