package desktop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeRectPerEdge(t *testing.T) {
	start := Rect{X: 100, Y: 100, W: 400, H: 300}

	cases := []struct {
		edge ResizeEdge
		dx   int
		dy   int
		want Rect
	}{
		{EdgeEast, 50, 0, Rect{X: 100, Y: 100, W: 450, H: 300}},
		{EdgeWest, 20, 0, Rect{X: 120, Y: 100, W: 380, H: 300}},
		{EdgeSouth, 0, 30, Rect{X: 100, Y: 100, W: 400, H: 330}},
		{EdgeNorth, 0, 10, Rect{X: 100, Y: 110, W: 400, H: 290}},
		{EdgeSouthEast, 50, 30, Rect{X: 100, Y: 100, W: 450, H: 330}},
		{EdgeNorthWest, 20, 10, Rect{X: 120, Y: 110, W: 380, H: 290}},
		{EdgeNorthEast, 50, 10, Rect{X: 100, Y: 110, W: 450, H: 290}},
		{EdgeSouthWest, 20, 30, Rect{X: 120, Y: 100, W: 380, H: 330}},
	}
	for _, tc := range cases {
		t.Run(string(tc.edge), func(t *testing.T) {
			assert.Equal(t, tc.want, ResizeRect(start, tc.edge, tc.dx, tc.dy))
		})
	}
}

func TestClampedMinEnforcesMinimumDimensions(t *testing.T) {
	got := Rect{X: 0, Y: 0, W: 10, H: 10}.ClampedMin(MinWindowWidth, MinWindowHeight)
	assert.Equal(t, MinWindowWidth, got.W)
	assert.Equal(t, MinWindowHeight, got.H)
}

func TestClampRectToViewportKeepsChromeReachable(t *testing.T) {
	viewport := Rect{X: 0, Y: 0, W: 800, H: 600}

	oversized := clampRectToViewport(Rect{X: -500, Y: -500, W: 2000, H: 2000}, viewport)
	assert.Equal(t, Rect{X: 10, Y: 10, W: 780, H: 580}, oversized)

	offscreen := clampRectToViewport(Rect{X: 5000, Y: 5000, W: 400, H: 300}, viewport)
	assert.Equal(t, Rect{X: 390, Y: 290, W: 400, H: 300}, offscreen)
}

func TestClampRectToViewportTinyViewport(t *testing.T) {
	viewport := Rect{X: 0, Y: 0, W: 100, H: 80}
	got := clampRectToViewport(Rect{X: 0, Y: 0, W: 400, H: 300}, viewport)
	assert.Equal(t, MinWindowWidth, got.W)
	assert.Equal(t, MinWindowHeight, got.H)
	assert.Equal(t, 10, got.X)
	assert.Equal(t, 10, got.Y)
}
