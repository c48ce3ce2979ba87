package economy

import "testing"

func TestClampBalance(t *testing.T) {
	tests := []struct {
		name          string
		cents         int64
		allowNegative bool
		want          int64
	}{
		{"positive untouched", 1500, false, 1500},
		{"zero untouched", 0, false, 0},
		{"negative clamped when disallowed", -300, false, 0},
		{"negative kept when allowed", -300, true, -300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampBalance(tt.cents, tt.allowNegative); got != tt.want {
				t.Errorf("ClampBalance(%d, %v) = %d, want %d", tt.cents, tt.allowNegative, got, tt.want)
			}
		})
	}
}

func TestRoundToUnits(t *testing.T) {
	tests := []struct {
		cents int64
		want  int64
	}{
		{0, 0},
		{100, 1},
		{149, 1},
		{151, 2},
		// half-to-even on the exact .50 boundary
		{150, 2},
		{250, 2},
		{350, 4},
		{450, 4},
		{-150, -2},
		{-250, -2},
		{-149, -1},
	}
	for _, tt := range tests {
		if got := RoundToUnits(tt.cents); got != tt.want {
			t.Errorf("RoundToUnits(%d) = %d, want %d", tt.cents, got, tt.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents    int64
		decimals bool
		want     string
	}{
		{1234, true, "12.34"},
		{1230, true, "12.30"},
		{-1234, true, "-12.34"},
		{5, true, "0.05"},
		{1234, false, "12"},
		{1250, false, "12"},
		{1350, false, "14"},
		{-1250, false, "-12"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents, tt.decimals); got != tt.want {
			t.Errorf("FormatCents(%d, %v) = %q, want %q", tt.cents, tt.decimals, got, tt.want)
		}
	}
}
