package utils

import (
	"path/filepath"
	"strings"
)

const (
	// MimeTypeRawDepth is the raw depth map file format, see rimage.ParseDepthMap.
	MimeTypeRawDepth = "image/raw-depth"

	// MimeTypeJPEG is regular jpgs.
	MimeTypeJPEG = "image/jpeg"

	// MimeTypePNG is regular pngs.
	MimeTypePNG = "image/png"

	// MimeTypeGIF is regular gifs.
	MimeTypeGIF = "image/gif"

	// MimeTypeBMP is windows bitmaps.
	MimeTypeBMP = "image/bmp"

	// MimeTypeTIFF is tiffs; the only format besides png that keeps 16-bit samples.
	MimeTypeTIFF = "image/tiff"

	// MimeTypeQOI is for .qoi "Quite OK Image" for lossless, fast encoding/decoding.
	MimeTypeQOI = "image/qoi"

	// MimeTypePPM is for binary netpbm pixmaps.
	MimeTypePPM = "image/x-portable-pixmap"
)

var extensionMimeTypes = map[string]string{
	".dat":  MimeTypeRawDepth,
	".jpg":  MimeTypeJPEG,
	".jpeg": MimeTypeJPEG,
	".png":  MimeTypePNG,
	".gif":  MimeTypeGIF,
	".bmp":  MimeTypeBMP,
	".tif":  MimeTypeTIFF,
	".tiff": MimeTypeTIFF,
	".qoi":  MimeTypeQOI,
	".ppm":  MimeTypePPM,
}

// MimeTypeFromPath returns the mime type implied by a file's extension. A
// trailing ".gz" is looked through and reported via gzipped. An unknown
// extension returns the empty string.
func MimeTypeFromPath(path string) (mimeType string, gzipped bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".gz" {
		gzipped = true
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	return extensionMimeTypes[ext], gzipped
}
