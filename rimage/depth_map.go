package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/depthviz/utils"
)

// Depth is a single 16-bit depth sample. By convention the unit is millimeters.
type Depth uint16

// MaxDepth is the largest representable depth.
const MaxDepth = Depth(math.MaxUint16)

// MillimetersPerMeter converts raw depth samples into meters. Samples are
// assumed to be millimeters; nothing in the image says so.
const MillimetersPerMeter = 1000.0

// DepthMap is a row-major, single channel grid of 16-bit samples. A DepthMap
// handed to the pipeline is never modified by it.
type DepthMap struct {
	width  int
	height int

	data []Depth
}

// NewEmptyDepthMap returns a zero filled depth map.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// NewDepthMapFromSamples builds a depth map from row-major samples.
func NewDepthMapFromSamples(width, height int, samples []Depth) (*DepthMap, error) {
	if width < 0 || height < 0 {
		return nil, utils.NewPreconditionErrorf("bad width or height for depth map %v %v", width, height)
	}
	if len(samples) != width*height {
		return nil, utils.NewPreconditionErrorf(
			"depth map %dx%d needs %d samples, got %d", width, height, width*height, len(samples))
	}
	data := make([]Depth, len(samples))
	copy(data, samples)
	return &DepthMap{width: width, height: height, data: data}, nil
}

// NewDepthMapFromRows builds a depth map from a slice of equally sized rows.
func NewDepthMapFromRows(rows [][]Depth) (*DepthMap, error) {
	if len(rows) == 0 {
		return NewEmptyDepthMap(0, 0), nil
	}
	width := len(rows[0])
	samples := make([]Depth, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, utils.NewPreconditionErrorf("row %d has %d samples, expected %d", y, len(row), width)
		}
		samples = append(samples, row...)
	}
	return NewDepthMapFromSamples(width, len(rows), samples)
}

// ConvertImageToDepthMap takes a decoded image and returns its 16-bit luma as a
// depth map. Gray16 images are copied sample for sample; anything else goes
// through color.Gray16Model.
func ConvertImageToDepthMap(img image.Image) (*DepthMap, error) {
	if img == nil {
		return nil, utils.NewInputError(errors.New("no image to convert to a depth map"))
	}
	switch ii := img.(type) {
	case *DepthMap:
		return ii.Clone(), nil
	case *image.Gray16:
		return convertGray16ToDepthMap(ii), nil
	default:
		bounds := img.Bounds()
		dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())
		for y := 0; y < dm.height; y++ {
			for x := 0; x < dm.width; x++ {
				g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				dm.Set(x, y, Depth(g.Y))
			}
		}
		return dm, nil
	}
}

func convertGray16ToDepthMap(gray *image.Gray16) *DepthMap {
	bounds := gray.Bounds()
	dm := NewEmptyDepthMap(bounds.Dx(), bounds.Dy())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			dm.Set(x, y, Depth(gray.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y))
		}
	}
	return dm
}

// HasData reports whether the depth map holds at least one sample.
func (dm *DepthMap) HasData() bool {
	return dm != nil && dm.width > 0 && dm.height > 0 && len(dm.data) > 0
}

// Width returns the width of the depth map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the height of the depth map.
func (dm *DepthMap) Height() int {
	return dm.height
}

// Len is width*height.
func (dm *DepthMap) Len() int {
	return len(dm.data)
}

func (dm *DepthMap) kxy(x, y int) int {
	return (y * dm.width) + x
}

// Get returns the sample at p.
func (dm *DepthMap) Get(p image.Point) Depth {
	return dm.data[dm.kxy(p.X, p.Y)]
}

// GetDepth returns the sample at (x, y).
func (dm *DepthMap) GetDepth(x, y int) Depth {
	return dm.data[dm.kxy(x, y)]
}

// Set stores a sample at (x, y). Only used while a depth map is being built.
func (dm *DepthMap) Set(x, y int, val Depth) {
	dm.data[dm.kxy(x, y)] = val
}

// Row returns the samples of row y. The slice aliases the depth map and must not be modified.
func (dm *DepthMap) Row(y int) []Depth {
	return dm.data[y*dm.width : (y+1)*dm.width]
}

// Samples returns a copy of every sample, row-major.
func (dm *DepthMap) Samples() []Depth {
	out := make([]Depth, len(dm.data))
	copy(out, dm.data)
	return out
}

// Clone returns a deep copy.
func (dm *DepthMap) Clone() *DepthMap {
	return &DepthMap{width: dm.width, height: dm.height, data: dm.Samples()}
}

// SampleDepthMeters returns the first sample converted to meters. It exists for
// human-facing reports only.
func (dm *DepthMap) SampleDepthMeters() float64 {
	if !dm.HasData() {
		return 0
	}
	return float64(dm.data[0]) / MillimetersPerMeter
}

// ColorModel implements image.Image; a depth map reads as 16-bit gray.
func (dm *DepthMap) ColorModel() color.Model {
	return color.Gray16Model
}

// Bounds implements image.Image.
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// At implements image.Image.
func (dm *DepthMap) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= dm.width || y >= dm.height {
		return color.Gray16{}
	}
	return color.Gray16{Y: uint16(dm.GetDepth(x, y))}
}

// ToGray16Picture copies the depth map into a standard library *image.Gray16.
func (dm *DepthMap) ToGray16Picture() *image.Gray16 {
	img := image.NewGray16(dm.Bounds())
	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(dm.GetDepth(x, y))})
		}
	}
	return img
}

// NewGradientDepthMap returns a synthetic depth map whose samples grow linearly
// along the diagonal, from 0 at the top left corner to maxDepth at the bottom right.
func NewGradientDepthMap(width, height int, maxDepth Depth) (*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, utils.NewPreconditionErrorf("bad width or height for depth map %v %v", width, height)
	}
	dm := NewEmptyDepthMap(width, height)
	den := width + height - 2
	if den == 0 {
		return dm, nil
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dm.Set(x, y, Depth(uint64(x+y)*uint64(maxDepth)/uint64(den)))
		}
	}
	return dm, nil
}
