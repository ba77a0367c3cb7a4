// Package media reshapes captured screen rasters before they are encoded.
//
// Two steps run in a fixed order: NormalizeToLogical aligns a raster with the
// logical pointer-coordinate space, then BoundToEdge caps the longest edge.
// Both only ever shrink an image and return the input unchanged when their
// preconditions are not met.
package media

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// AspectTolerance is the largest width/height ratio difference between a raster
// and the logical screen for which the raster is still treated as a scaled copy.
const AspectTolerance = 0.02

// Geometry is a size in the logical pointer-coordinate space.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// NormalizeToLogical resizes img to exactly the logical size when the raster is
// a denser copy of the logical space, as on high-density displays where the
// raster is an integer multiple of pointer coordinates.
//
// The raster is returned unchanged when the logical size is not valid, already
// matches, differs in aspect ratio by more than AspectTolerance (for example a
// multi-monitor layout the logical size does not describe), or is smaller than
// the logical size on either axis.
func NormalizeToLogical(img image.Image, logical Geometry) image.Image {
	if img == nil || !logical.Valid() {
		return img
	}
	b := img.Bounds()
	rawWidth, rawHeight := b.Dx(), b.Dy()
	if rawWidth == logical.Width && rawHeight == logical.Height {
		return img
	}
	if rawWidth <= 0 || rawHeight <= 0 {
		return img
	}

	rawRatio := float64(rawWidth) / float64(rawHeight)
	logicalRatio := float64(logical.Width) / float64(logical.Height)
	if math.Abs(rawRatio-logicalRatio) > AspectTolerance {
		return img
	}

	if rawWidth >= logical.Width && rawHeight >= logical.Height {
		return resize(img, logical.Width, logical.Height)
	}
	return img
}

// BoundToEdge shrinks img so neither dimension exceeds maxEdge, keeping the
// aspect ratio. A maxEdge of zero or less disables bounding.
func BoundToEdge(img image.Image, maxEdge int) image.Image {
	if img == nil || maxEdge <= 0 {
		return img
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= maxEdge && height <= maxEdge {
		return img
	}

	newWidth, newHeight := BoundedSize(width, height, maxEdge)
	return resize(img, newWidth, newHeight)
}

// BoundedSize returns the dimensions BoundToEdge resizes a width x height image to.
func BoundedSize(width, height, maxEdge int) (int, int) {
	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		return width, height
	}
	scale := math.Min(float64(maxEdge)/float64(width), float64(maxEdge)/float64(height))
	newWidth := min(maxEdge, max(1, int(math.Round(float64(width)*scale))))
	newHeight := min(maxEdge, max(1, int(math.Round(float64(height)*scale))))
	return newWidth, newHeight
}

// resize scales img into a new RGBA raster of the given size with Catmull-Rom
// resampling, the sharpest kernel x/image/draw provides.
func resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ToRGBA converts img to a zero-origin RGBA raster, reusing it when it already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
