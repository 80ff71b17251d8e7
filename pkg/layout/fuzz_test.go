package layout

import (
	"math"
	"strconv"
	"testing"
)

// FuzzRadial checks that arbitrary child counts, node sizes and viewports
// still tile the full circle with finite placements.
func FuzzRadial(f *testing.F) {
	f.Add(3, 120.0, 60.0, 800.0, 600.0)
	f.Add(0, 0.0, 0.0, 0.0, 0.0)
	f.Add(1, 0.0, 0.0, 0.0, 0.0)
	f.Add(40, 350.0, 400.0, 320.0, 200.0)
	f.Add(200, 1e6, 1e6, 1e6, 1.0)

	f.Fuzz(func(t *testing.T, n int, w, h, vw, vh float64) {
		if n < 0 || n > 200 {
			return
		}
		for _, v := range []float64{w, h, vw, vh} {
			if !(v >= 0 && v <= 1e6) {
				return
			}
		}

		opts := DefaultOptions()
		opts.Viewport = Size{Width: vw, Height: vh}
		in := Input{Center: Item{ID: "c", Size: Size{Width: w, Height: h}}}
		for i := 0; i < n; i++ {
			in.Children = append(in.Children, Item{
				ID:   strconv.Itoa(i),
				Size: Size{Width: w / float64(1+i%3), Height: h},
			})
		}

		res := Radial(in, opts)
		if len(res.Children) != n || len(res.Lines) != n {
			t.Fatalf("got %d children and %d lines, want %d", len(res.Children), len(res.Lines), n)
		}
		if n == 0 {
			return
		}
		if !(res.Radius > 0) || math.IsInf(res.Radius, 0) {
			t.Fatalf("radius = %v", res.Radius)
		}
		for _, c := range res.Children {
			if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsInf(c.X, 0) || math.IsInf(c.Y, 0) {
				t.Fatalf("child %s placed at (%v, %v)", c.ID, c.X, c.Y)
			}
		}
		assertTiles(t, res)
	})
}
