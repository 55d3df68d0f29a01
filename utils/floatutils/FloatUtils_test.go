package floatutils

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClipInterval(t *testing.T) {
	bounds := Symmetric(-2.4)
	if bounds != (r1.Interval{Min: -2.4, Max: 2.4}) {
		t.Fatalf("symmetric: have %v", bounds)
	}

	for _, test := range []struct {
		in, want float64
		inside   bool
	}{
		{0, 0, true},
		{2.4, 2.4, true},
		{3, 2.4, false},
		{-5, -2.4, false},
	} {
		if have := ClipInterval(test.in, bounds); have != test.want {
			t.Errorf("clipInterval(%v): want(%v) have(%v)", test.in, test.want,
				have)
		}
		if have := In(test.in, bounds); have != test.inside {
			t.Errorf("in(%v): want(%v) have(%v)", test.in, test.inside, have)
		}
	}
}
