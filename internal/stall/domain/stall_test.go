package domain

import "testing"

func TestClampCoordinate(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"in range", 42.5, 42.5},
		{"lower bound", 0, 0},
		{"upper bound", 100, 100},
		{"below range", -10, 0},
		{"above range", 150, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampCoordinate(tt.input); got != tt.want {
				t.Errorf("ClampCoordinate(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayPin(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		stall Stall
		want  *Pin
	}{
		{"no pin", Stall{}, nil},
		{"only x set", Stall{PinX: f(10)}, nil},
		{"only y set", Stall{PinY: f(10)}, nil},
		{"both set", Stall{PinX: f(33.3), PinY: f(66.6)}, &Pin{X: 33.3, Y: 66.6}},
		{"zero pin is a pin", Stall{PinX: f(0), PinY: f(0)}, &Pin{X: 0, Y: 0}},
		{"out of range clamps", Stall{PinX: f(150), PinY: f(-10)}, &Pin{X: 100, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.stall.DisplayPin()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("DisplayPin() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("DisplayPin() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}
