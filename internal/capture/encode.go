package capture

import (
	"image"
	"image/png"
	"io"
)

// CompressionLevel maps a 0-9 effort level onto the levels image/png offers.
// Every level is lossless; only encode time and payload size change.
func CompressionLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

// Encode writes img to w as PNG at the given effort level.
func Encode(w io.Writer, img image.Image, level int) error {
	enc := &png.Encoder{CompressionLevel: CompressionLevel(level)}
	return enc.Encode(w, img)
}
