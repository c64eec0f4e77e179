package oddsmath

import (
	"math"
	"testing"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american float64
		want     float64
		wantErr  bool
	}{
		{"positive odds", 150, 2.50, false},
		{"negative odds", -150, 1.0 + 100.0/150.0, false},
		{"even money", 100, 2.00, false},
		{"big favorite", -500, 1.20, false},
		{"zero is invalid", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToDecimal(tt.american)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AmericanToDecimal(%v) error = %v, wantErr %v", tt.american, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AmericanToDecimal(%v) = %v, want %v", tt.american, got, tt.want)
			}
		})
	}
}

func TestDecimalToAmericanRoundTrip(t *testing.T) {
	for _, american := range []float64{-500, -120, -110, -105, 100, 120, 250} {
		decimal, err := AmericanToDecimal(american)
		if err != nil {
			t.Fatalf("AmericanToDecimal(%v): %v", american, err)
		}
		back, err := DecimalToAmerican(decimal)
		if err != nil {
			t.Fatalf("DecimalToAmerican(%v): %v", decimal, err)
		}
		if back != american {
			t.Errorf("round trip %v → %v → %v", american, decimal, back)
		}
	}
}

func TestBetter(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{120, -110, true},   // positive beats negative
		{-110, 120, false},
		{-105, -120, true},  // less negative beats more negative
		{-120, -105, false},
		{150, 120, true},    // larger positive beats smaller
		{-110, -110, false}, // equal is not better
		{110, 0, true},      // malformed price never wins
		{0, -200, false},
	}

	for _, tt := range tests {
		if got := Better(tt.a, tt.b); got != tt.want {
			t.Errorf("Better(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
