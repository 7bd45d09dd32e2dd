package money

import "testing"

func TestRoundTHB(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{117.7000000001, 117.70},
		{33.333333, 33.33},
		{0.005, 0.01},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundTHB(tt.in); got != tt.want {
			t.Errorf("RoundTHB(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatTHB(t *testing.T) {
	if got := FormatTHB(125.5); got != "125.50" {
		t.Errorf("FormatTHB(125.5) = %q, want 125.50", got)
	}
	if got := FormatTHB(20); got != "20.00" {
		t.Errorf("FormatTHB(20) = %q, want 20.00", got)
	}
}
