package rimage

import (
	"context"
	"image"

	"go.viam.com/depthviz/utils"
)

func colorizeRow(dst []Color, src []uint8, lut *ColormapLUT) {
	for x, v := range src {
		dst[x] = lut[v]
	}
}

// Colorize renders every gray sample v as cm.At(v/255). The output is opaque;
// any alpha a colormap might imply is dropped.
func Colorize(gray *image.Gray, cm Colormap) *Image {
	lut := NewColormapLUT(cm)
	bounds := gray.Bounds()
	out := NewImageFromBounds(bounds)
	for y := 0; y < out.height; y++ {
		colorizeRow(out.data[y*out.width:(y+1)*out.width], grayRow(gray, y), lut)
	}
	return out
}

// ColorizeParallel is Colorize with the rows split across workers.
func ColorizeParallel(ctx context.Context, gray *image.Gray, cm Colormap) (*Image, error) {
	lut := NewColormapLUT(cm)
	out := NewImageFromBounds(gray.Bounds())
	err := utils.GroupWorkParallel(
		ctx,
		out.height,
		nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, y int) {
				colorizeRow(out.data[y*out.width:(y+1)*out.width], grayRow(gray, y), lut)
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// grayRow returns row y relative to the image's bounds.
func grayRow(gray *image.Gray, y int) []uint8 {
	b := gray.Bounds()
	off := gray.PixOffset(b.Min.X, b.Min.Y+y)
	return gray.Pix[off : off+b.Dx()]
}
