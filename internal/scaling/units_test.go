package scaling

import "testing"

func TestRoundQuantity(t *testing.T) {
	cases := []struct {
		unit string
		in   float64
		want float64
	}{
		{"GM", 13.7, 14},
		{"GM", 13.5, 14},
		{"GM", 13.49, 13},
		{"ML", 0.5, 1},
		{"ML", 999.5, 1000},
		{"GM", -2.5, -2},
		{"PCS", 13.7, 13.7},
		{"KG", 0.125, 0.125},
		{"BOTTLE", 2.5, 2.5},
		{"gm", 13.7, 13.7},
	}

	for _, tc := range cases {
		if got := RoundQuantity(tc.unit, tc.in); got != tc.want {
			t.Fatalf("RoundQuantity(%q, %v) = %v, want %v", tc.unit, tc.in, got, tc.want)
		}
	}
}
