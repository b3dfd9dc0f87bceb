package rimage

import (
	"image"
	"image/color"
)

// Image is a row-major grid of opaque RGB pixels. It is the output of the
// colorizer and is written once, then only read.
type Image struct {
	data          []Color
	width, height int
}

// NewImage returns a black image of the given size.
func NewImage(width, height int) *Image {
	return &Image{
		data:   make([]Color, width*height),
		width:  width,
		height: height,
	}
}

// NewImageFromBounds returns a black image sized to bounds.
func NewImageFromBounds(bounds image.Rectangle) *Image {
	return NewImage(bounds.Dx(), bounds.Dy())
}

// ColorModel returns the opaque RGBA model; Image never carries alpha.
func (i *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// In reports whether (x, y) is inside the image.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

func (i *Image) kxy(x, y int) int {
	return (y * i.width) + x
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// Width returns the width of the image.
func (i *Image) Width() int {
	return i.width
}

// Height returns the height of the image.
func (i *Image) Height() int {
	return i.height
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	if !i.In(x, y) {
		return color.RGBA{}
	}
	c := i.data[i.kxy(x, y)]
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Opaque reports that every pixel is fully opaque.
func (i *Image) Opaque() bool {
	return true
}

// GetXY returns the pixel at (x, y).
func (i *Image) GetXY(x, y int) Color {
	return i.data[i.kxy(x, y)]
}

// SetXY sets the pixel at (x, y).
func (i *Image) SetXY(x, y int, c Color) {
	i.data[i.kxy(x, y)] = c
}

// Pix returns the interleaved R,G,B bytes of the image, row-major.
func (i *Image) Pix() []uint8 {
	pix := make([]uint8, 0, 3*len(i.data))
	for _, c := range i.data {
		pix = append(pix, c.R, c.G, c.B)
	}
	return pix
}

// ToNRGBA copies the image into a standard library *image.NRGBA.
func (i *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(i.Bounds())
	for k, c := range i.data {
		off := 4 * k
		out.Pix[off] = c.R
		out.Pix[off+1] = c.G
		out.Pix[off+2] = c.B
		out.Pix[off+3] = 0xff
	}
	return out
}
