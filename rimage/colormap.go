package rimage

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/depthviz/utils"
)

// A Colormap renders a normalized scalar as a color. Implementations must be
// pure and defined on the closed interval [0, 1]; values outside of it are
// clamped before lookup.
type Colormap interface {
	At(t float64) Color
}

// ColormapFunc adapts a plain function into a Colormap. The function only
// ever sees clamped values.
type ColormapFunc func(t float64) Color

// At implements Colormap.
func (f ColormapFunc) At(t float64) Color {
	return f(ClampUnit(t))
}

// ClampUnit clamps t into [0, 1]. NaN becomes 0.
func ClampUnit(t float64) float64 {
	switch {
	case math.IsNaN(t), t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Turbo is Google's Turbo rainbow colormap, evaluated with the 6th-degree
// polynomial fit of the published lookup table.
// See https://ai.googleblog.com/2019/08/turbo-improved-rainbow-colormap-for.html.
var Turbo Colormap = ColormapFunc(func(t float64) Color {
	r := 34.61 + t*(1172.33-t*(10793.56-t*(33300.12-t*(38394.49-t*14825.05))))
	g := 23.31 + t*(557.33+t*(1225.33-t*(3574.96-t*(1073.77+t*707.56))))
	b := 27.2 + t*(3211.1-t*(15327.97-t*(27814.0-t*(22569.18-t*6838.66))))
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
})

// Grayscale maps t to a neutral gray of the same intensity.
var Grayscale Colormap = ColormapFunc(func(t float64) Color {
	v := uint8(t * 255)
	return Color{R: v, G: v, B: v}
})

// HueRamp sweeps hue from orange (30°) to blue (230°) at full saturation and value.
var HueRamp Colormap = ColormapFunc(func(t float64) Color {
	return NewColorFromHSV(30+(200.0*t), 1.0, 1.0)
})

// Gradient interpolates between evenly spaced color stops in CIE-L*a*b* space.
type Gradient struct {
	stops []Color
}

// NewGradient builds a gradient from #rrggbb stops, first stop at t=0 and last at t=1.
func NewGradient(hexStops ...string) (*Gradient, error) {
	if len(hexStops) == 0 {
		return nil, errors.New("a gradient needs at least one color stop")
	}
	stops := make([]Color, 0, len(hexStops))
	for _, h := range hexStops {
		c, err := NewColorFromHex(h)
		if err != nil {
			return nil, err
		}
		stops = append(stops, c)
	}
	return &Gradient{stops: stops}, nil
}

// At implements Colormap.
func (g *Gradient) At(t float64) Color {
	t = ClampUnit(t)
	if len(g.stops) == 1 {
		return g.stops[0]
	}
	segments := len(g.stops) - 1
	pos := t * float64(segments)
	idx := int(pos)
	if idx >= segments {
		return g.stops[segments]
	}
	frac := pos - float64(idx)
	if frac == 0 {
		return g.stops[idx]
	}
	a, b := g.stops[idx].toColorful(), g.stops[idx+1].toColorful()
	return newColorFromColorful(a.BlendLab(b, frac))
}

// ColormapLUT memoizes a colormap at the 256 possible 8-bit inputs.
type ColormapLUT [256]Color

// NewColormapLUT samples cm at v/255 for every byte value v.
func NewColormapLUT(cm Colormap) *ColormapLUT {
	var lut ColormapLUT
	for v := 0; v < len(lut); v++ {
		lut[v] = cm.At(float64(v) / 255.0)
	}
	return &lut
}

// At implements Colormap by picking the nearest memoized entry.
func (lut *ColormapLUT) At(t float64) Color {
	return lut[int(math.Round(ClampUnit(t)*255))]
}

// Colormap names accepted by ColormapByName.
const (
	ColormapTurbo     = "turbo"
	ColormapGrayscale = "gray"
	ColormapHue       = "hue"
)

// ColormapNames lists the names ColormapByName understands.
var ColormapNames = []string{ColormapTurbo, ColormapGrayscale, ColormapHue}

// ColormapByName resolves a named colormap. The empty name means Turbo.
func ColormapByName(name string) (Colormap, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ColormapTurbo:
		return Turbo, nil
	case ColormapGrayscale, "grey", "grayscale":
		return Grayscale, nil
	case ColormapHue:
		return HueRamp, nil
	default:
		return nil, utils.NewInputErrorf("unknown colormap %q, expected one of %v", name, ColormapNames)
	}
}
