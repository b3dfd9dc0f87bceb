package rimage

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/depthviz/utils"
)

// maxDepthMapSide bounds the width and height read from a raw depth file.
const maxDepthMapSide = 100000

// ParseDepthMap reads a raw depth map file, gunzipping it first when the name
// ends in ".gz".
func ParseDepthMap(fn string) (dm *DepthMap, err error) {
	f, err := os.Open(fn) //nolint:gosec
	if err != nil {
		return nil, utils.NewInputError(err)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	var r io.Reader = f
	if _, gzipped := utils.MimeTypeFromPath(fn); gzipped {
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			return nil, utils.NewInputError(errors.Wrapf(gzErr, "cannot gunzip %s", fn))
		}
		defer func() {
			err = multierr.Combine(err, gz.Close())
		}()
		r = gz
	}

	dm, err = ReadDepthMap(bufio.NewReader(r))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read depth map %s", fn)
	}
	return dm, nil
}

func readNext(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// ReadDepthMap reads the raw depth format: little-endian int64 width and
// height followed by width*height int64 samples in column-major order.
func ReadDepthMap(r io.Reader) (*DepthMap, error) {
	rawWidth, err := readNext(r)
	if err != nil {
		return nil, utils.NewInputError(errors.Wrap(err, "cannot read depth map width"))
	}
	rawHeight, err := readNext(r)
	if err != nil {
		return nil, utils.NewInputError(errors.Wrap(err, "cannot read depth map height"))
	}
	if rawWidth <= 0 || rawWidth >= maxDepthMapSide || rawHeight <= 0 || rawHeight >= maxDepthMapSide {
		return nil, utils.NewInputErrorf("bad width or height for depth map %v %v", rawWidth, rawHeight)
	}

	dm := NewEmptyDepthMap(int(rawWidth), int(rawHeight))
	for x := 0; x < dm.width; x++ {
		for y := 0; y < dm.height; y++ {
			z, err := readNext(r)
			if err != nil {
				return nil, utils.NewInputError(errors.Wrapf(err, "cannot read depth at (%d,%d)", x, y))
			}
			if z < 0 || z > int64(MaxDepth) {
				return nil, utils.NewInputErrorf("depth %d at (%d,%d) does not fit in 16 bits", z, x, y)
			}
			dm.Set(x, y, Depth(z))
		}
	}
	return dm, nil
}

// WriteTo writes the depth map in the raw depth format.
func (dm *DepthMap) WriteTo(out io.Writer) (int64, error) {
	var written int64
	buf := make([]byte, 8)
	put := func(v int64) error {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		n, err := out.Write(buf)
		written += int64(n)
		return err
	}

	if err := put(int64(dm.width)); err != nil {
		return written, err
	}
	if err := put(int64(dm.height)); err != nil {
		return written, err
	}
	for x := 0; x < dm.width; x++ {
		for y := 0; y < dm.height; y++ {
			if err := put(int64(dm.GetDepth(x, y))); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// WriteRawDepthMapToFile writes the raw depth format to fn, gzipped when fn
// ends in ".gz".
func WriteRawDepthMapToFile(fn string, dm *DepthMap) (err error) {
	f, err := os.Create(fn) //nolint:gosec
	if err != nil {
		return utils.NewOutputError(err)
	}
	defer func() {
		err = multierr.Combine(err, utils.NewOutputError(f.Close()))
	}()

	bw := bufio.NewWriter(f)
	var out io.Writer = bw
	var gout *gzip.Writer
	if _, gzipped := utils.MimeTypeFromPath(fn); gzipped {
		gout = gzip.NewWriter(bw)
		out = gout
	}

	if _, err := dm.WriteTo(out); err != nil {
		return utils.NewOutputError(errors.Wrapf(err, "cannot write depth map to %s", fn))
	}
	if gout != nil {
		if err := gout.Close(); err != nil {
			return utils.NewOutputError(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return utils.NewOutputError(err)
	}
	return utils.NewOutputError(f.Sync())
}
