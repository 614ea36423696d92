package kkt

import (
	"math"
	"testing"
)

func TestFBComplementarity(t *testing.T) {
	cases := []struct {
		name string
		a, b float64
		want bool // a>=0 && b>=0 && a*b==0
	}{
		{"both zero", 0, 0, true},
		{"a positive, b zero", 3, 0, true},
		{"a zero, b positive", 0, 4, true},
		{"both positive", 1, 1, false},
		{"a negative", -1, 0, false},
		{"b negative", 0, -1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fb := FB(c.a, c.b, 0)
			isZero := math.Abs(fb) < 1e-15
			if isZero != c.want {
				t.Errorf("FB(%g,%g;0)=%g, isZero=%v, want %v", c.a, c.b, fb, isZero, c.want)
			}
		})
	}
}

func TestFBSmoothingKeepsNearOriginFinite(t *testing.T) {
	fb := FB(0, 0, 1e-8)
	if math.IsNaN(fb) || math.IsInf(fb, 0) {
		t.Fatalf("FB(0,0;eps) = %g, want finite", fb)
	}
}

func TestDAdU(t *testing.T) {
	umin, umax := -1.0, 1.0
	got := dAdU(0, umin, umax)
	want := umax + umin - 0
	if got != want {
		t.Errorf("dAdU(0,-1,1) = %g, want %g", got, want)
	}
}
