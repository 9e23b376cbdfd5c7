package systems

import (
	"math"
	"testing"
)

func TestWrapCoord(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		size float64
		want float64
	}{
		{"inside", 3.5, 10, 3.5},
		{"upper edge", 10, 10, 0},
		{"past upper", 12.25, 10, 2.25},
		{"negative", -0.5, 10, 9.5},
		{"far negative", -21, 10, 9},
		{"tiny negative", -1e-18, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapCoord(tt.v, tt.size)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("WrapCoord(%v, %v) = %v, want %v", tt.v, tt.size, got, tt.want)
			}
			if got < 0 || got >= tt.size {
				t.Errorf("WrapCoord(%v, %v) = %v outside [0, %v)", tt.v, tt.size, got, tt.size)
			}
		})
	}
}

func TestModInt(t *testing.T) {
	if got := ModInt(-1, 10); got != 9 {
		t.Errorf("ModInt(-1, 10) = %d, want 9", got)
	}
	if got := ModInt(25, 10); got != 5 {
		t.Errorf("ModInt(25, 10) = %d, want 5", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	for _, a := range []float64{0, 1, -1, 3 * math.Pi, -7 * math.Pi / 2, 100} {
		n := NormalizeAngle(a)
		if n < -math.Pi || n > math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v outside [-pi, pi]", a, n)
		}
		if math.Abs(math.Sin(n)-math.Sin(a)) > 1e-9 || math.Abs(math.Cos(n)-math.Cos(a)) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v changed direction", a, n)
		}
	}
}
