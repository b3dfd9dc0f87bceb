package rimage

import (
	"context"
	"image"

	"go.viam.com/depthviz/utils"
)

// normalizer rescales samples of one range into [0, 255]. The arithmetic is
// float32 with truncation so outputs match the reference byte for byte.
type normalizer struct {
	r    Range
	span float32
}

func newNormalizer(r Range) normalizer {
	return normalizer{r: r, span: float32(r.Span())}
}

func (n normalizer) apply(z Depth) uint8 {
	if n.r.Flat() {
		return 0
	}
	if z < n.r.Min {
		z = n.r.Min
	} else if z > n.r.Max {
		z = n.r.Max
	}
	return uint8(float32(z-n.r.Min) / n.span * 255)
}

func (n normalizer) row(dst []uint8, src []Depth) {
	for x, z := range src {
		dst[x] = n.apply(z)
	}
}

// NormalizeDepth maps a single sample of r into [0, 255]. Samples equal to
// r.Min map to 0, samples equal to r.Max map to 255, and a flat range maps
// everything to 0.
func NormalizeDepth(z Depth, r Range) uint8 {
	return newNormalizer(r).apply(z)
}

// Normalize linearly rescales every sample of dm from r into an 8-bit gray
// image of the same size.
func Normalize(dm *DepthMap, r Range) *image.Gray {
	n := newNormalizer(r)
	out := image.NewGray(dm.Bounds())
	for y := 0; y < dm.height; y++ {
		n.row(out.Pix[y*out.Stride:y*out.Stride+dm.width], dm.Row(y))
	}
	return out
}

// NormalizeParallel is Normalize with the rows split across workers. r must be
// fully resolved before calling.
func NormalizeParallel(ctx context.Context, dm *DepthMap, r Range) (*image.Gray, error) {
	n := newNormalizer(r)
	out := image.NewGray(dm.Bounds())
	err := utils.GroupWorkParallel(
		ctx,
		dm.height,
		nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, y int) {
				n.row(out.Pix[y*out.Stride:y*out.Stride+dm.width], dm.Row(y))
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
