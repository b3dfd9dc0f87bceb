package pipeline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/depthviz/rimage"
)

// Stats summarizes one run for reporting. It plays no part in the
// transformation itself.
type Stats struct {
	Width  int
	Height int
	MinVal rimage.Depth
	MaxVal rimage.Depth

	// SampleDepthM is the first sample converted to meters, assuming raw
	// samples are millimeters.
	SampleDepthM float64

	// MeanDepth and StdDevDepth are in raw sample units.
	MeanDepth   float64
	StdDevDepth float64

	OutputPath string
	VizPath    string
}

func newStats(dm *rimage.DepthMap, r rimage.Range) (Stats, error) {
	samples := dm.Samples()
	data := make(stats.Float64Data, len(samples))
	for i, z := range samples {
		data[i] = float64(z)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return Stats{}, errors.Wrap(err, "cannot compute mean depth")
	}
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return Stats{}, errors.Wrap(err, "cannot compute depth standard deviation")
	}
	return Stats{
		Width:        dm.Width(),
		Height:       dm.Height(),
		MinVal:       r.Min,
		MaxVal:       r.Max,
		SampleDepthM: dm.SampleDepthMeters(),
		MeanDepth:    mean,
		StdDevDepth:  sd,
	}, nil
}

// Report prints the human readable summary of a run.
func (s Stats) Report(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("Original Resolution: %dx%d", s.Width, s.Height),
		"Data type: u16",
		fmt.Sprintf("Shape: (%d, %d, 1)", s.Height, s.Width),
		fmt.Sprintf("Depth in meters (sample): %s m", strconv.FormatFloat(s.SampleDepthM, 'f', -1, 32)),
		fmt.Sprintf("Min depth: %d", s.MinVal),
		fmt.Sprintf("Max depth: %d", s.MaxVal),
	}
	if s.OutputPath != "" {
		lines = append(lines, "Saved grayscale output to "+s.OutputPath)
	}
	if s.VizPath != "" {
		lines = append(lines, "Saved visualization to "+s.VizPath)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
