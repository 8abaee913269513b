package crop

import (
	"math"
	"testing"

	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
)

func TestComputeArea(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		pan           Pan
		zoom, aspect  float64
		want          imagecodec.Rect
	}{
		{name: "square source 4:3", width: 500, height: 500, zoom: 1, aspect: 4.0 / 3.0, want: imagecodec.Rect{X: 0, Y: 63, Width: 500, Height: 375}},
		{name: "wide source 16:9", width: 1000, height: 500, zoom: 1, aspect: 16.0 / 9.0, want: imagecodec.Rect{X: 56, Y: 0, Width: 889, Height: 500}},
		{name: "zoom shrinks around center", width: 500, height: 500, zoom: 2, aspect: 1, want: imagecodec.Rect{X: 125, Y: 125, Width: 250, Height: 250}},
		{name: "pan moves opposite", width: 500, height: 500, pan: Pan{X: 20}, zoom: 2, aspect: 1, want: imagecodec.Rect{X: 75, Y: 125, Width: 250, Height: 250}},
		{name: "pan is clamped to bounds", width: 500, height: 500, pan: Pan{X: 100, Y: -100}, zoom: 2, aspect: 1, want: imagecodec.Rect{X: 0, Y: 250, Width: 250, Height: 250}},
		{name: "zoom above max clamps", width: 300, height: 300, zoom: 10, aspect: 1, want: imagecodec.Rect{X: 100, Y: 100, Width: 100, Height: 100}},
		{name: "empty source", width: 0, height: 10, zoom: 1, aspect: 1, want: imagecodec.Rect{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeArea(tc.width, tc.height, tc.pan, tc.zoom, tc.aspect)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestComputeAreaStaysInBounds(t *testing.T) {
	for _, zoom := range []float64{1, 1.3, 2.7, 3} {
		for _, px := range []float64{-250, -40, 0, 33, 250} {
			r := ComputeArea(640, 427, Pan{X: px, Y: -px}, zoom, 2.0/3.0)
			if r.X < 0 || r.Y < 0 || r.X+r.Width > 640 || r.Y+r.Height > 427 || r.Empty() {
				t.Fatalf("zoom %.1f pan %.0f produced out of bounds %+v", zoom, px, r)
			}
		}
	}
}

func TestClampZoom(t *testing.T) {
	if ClampZoom(0.5) != MinZoom || ClampZoom(4) != MaxZoom || ClampZoom(math.NaN()) != MinZoom || ClampZoom(2.2) != 2.2 {
		t.Fatal("zoom not clamped to [1,3]")
	}
}
