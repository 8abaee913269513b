package crop

import (
	"math"

	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
)

const (
	MinZoom  = 1.0
	MaxZoom  = 3.0
	ZoomStep = 0.1
)

// Pan is the offset of the image under the crop frame, in percent of the frame size.
// Positive X moves the image right, so the cropped area moves left.
type Pan struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClampZoom bounds zoom to [MinZoom, MaxZoom]. NaN collapses to MinZoom.
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// ComputeArea maps pan, zoom and aspect onto a pixel rectangle of a width x height
// image. At zoom 1 the frame is the largest rectangle of the aspect that fits the
// image; zooming shrinks it around its center, and the result never leaves the image.
func ComputeArea(width, height int, pan Pan, zoom, aspect float64) imagecodec.Rect {
	if width <= 0 || height <= 0 || aspect <= 0 {
		return imagecodec.Rect{}
	}
	zoom = ClampZoom(zoom)
	w, h := float64(width), float64(height)

	frameW, frameH := w, w/aspect
	if frameH > h {
		frameW, frameH = h*aspect, h
	}
	frameW /= zoom
	frameH /= zoom

	cx := w/2 - pan.X/100*frameW
	cy := h/2 - pan.Y/100*frameH

	rw := clampInt(int(math.Round(frameW)), 1, width)
	rh := clampInt(int(math.Round(frameH)), 1, height)
	rx := clampInt(int(math.Round(cx-frameW/2)), 0, width-rw)
	ry := clampInt(int(math.Round(cy-frameH/2)), 0, height-rh)

	return imagecodec.Rect{X: rx, Y: ry, Width: rw, Height: rh}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
