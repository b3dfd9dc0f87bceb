package rimage

import (
	"bufio"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"
	"golang.org/x/image/tiff"

	"go.viam.com/depthviz/utils"
)

// ReadImageFromFile decodes any supported image file. The format is sniffed
// from the content, not the extension.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, utils.NewInputError(errors.Wrapf(err, "could not open or find the image at: %s", path))
	}
	return img, nil
}

// ReadDepthMapFromFile loads a depth map from either a raw depth file
// (.dat, .dat.gz) or any supported image, reduced to its 16-bit luma.
func ReadDepthMapFromFile(path string) (*DepthMap, error) {
	if mimeType, _ := utils.MimeTypeFromPath(path); mimeType == utils.MimeTypeRawDepth {
		return ParseDepthMap(path)
	}
	img, err := ReadImageFromFile(path)
	if err != nil {
		return nil, err
	}
	return ConvertImageToDepthMap(img)
}

// EncodeImage writes img to w in the format named by mimeType.
func EncodeImage(w io.Writer, img image.Image, mimeType string) error {
	if ii, ok := img.(*Image); ok {
		img = ii.ToNRGBA()
	}
	switch mimeType {
	case utils.MimeTypePNG:
		return imaging.Encode(w, img, imaging.PNG)
	case utils.MimeTypeJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(95))
	case utils.MimeTypeGIF:
		return imaging.Encode(w, img, imaging.GIF)
	case utils.MimeTypeBMP:
		return imaging.Encode(w, img, imaging.BMP)
	case utils.MimeTypeTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case utils.MimeTypeQOI:
		return qoi.Encode(w, img)
	case utils.MimeTypePPM:
		return ppm.Encode(w, img)
	default:
		return errors.Errorf("do not know how to encode %q", mimeType)
	}
}

// WriteImageToFile encodes img into path, picking the encoder from the
// extension. Any failure is an output error.
func WriteImageToFile(path string, img image.Image) (err error) {
	mimeType, gzipped := utils.MimeTypeFromPath(path)
	if mimeType == "" || gzipped || mimeType == utils.MimeTypeRawDepth {
		return utils.NewOutputErrorf("unsupported image extension for %s", path)
	}

	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return utils.NewOutputError(err)
	}
	defer func() {
		err = multierr.Combine(err, utils.NewOutputError(f.Close()))
	}()

	w := bufio.NewWriter(f)
	if err := EncodeImage(w, img, mimeType); err != nil {
		return utils.NewOutputError(errors.Wrapf(err, "cannot encode %s", path))
	}
	return utils.NewOutputError(w.Flush())
}

// WriteDepthMapToFile saves a depth map losslessly: raw depth format for
// .dat and .dat.gz, a 16-bit image otherwise.
func WriteDepthMapToFile(path string, dm *DepthMap) error {
	if mimeType, _ := utils.MimeTypeFromPath(path); mimeType == utils.MimeTypeRawDepth {
		return WriteRawDepthMapToFile(path, dm)
	}
	return WriteImageToFile(path, dm.ToGray16Picture())
}
