package pipeline

import (
	"bytes"
	"context"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/depthviz/config"
	"go.viam.com/depthviz/logging"
	"go.viam.com/depthviz/rimage"
	"go.viam.com/depthviz/utils"
)

func exampleDepthMap(t *testing.T) *rimage.DepthMap {
	t.Helper()
	dm, err := rimage.NewDepthMapFromRows([][]rimage.Depth{
		{0, 10000},
		{5000, 10000},
	})
	test.That(t, err, test.ShouldBeNil)
	return dm
}

func TestRunExample(t *testing.T) {
	logger := logging.NewTestLogger(t)
	for _, parallel := range []bool{false, true} {
		cfg := &config.Config{Input: "unused.png", Viz: "viz.png", Parallel: parallel}
		res, err := Run(context.Background(), exampleDepthMap(t), cfg, logger)
		test.That(t, err, test.ShouldBeNil)

		test.That(t, res.Range, test.ShouldResemble, rimage.Range{Min: 0, Max: 10000})
		test.That(t, res.Gray.Pix, test.ShouldResemble, []uint8{0, 255, 127, 255})
		test.That(t, res.Viz, test.ShouldNotBeNil)
		test.That(t, res.Viz.GetXY(0, 0), test.ShouldResemble, rimage.Turbo.At(0))
		test.That(t, res.Viz.GetXY(1, 0), test.ShouldResemble, rimage.Turbo.At(1))

		test.That(t, res.Stats.Width, test.ShouldEqual, 2)
		test.That(t, res.Stats.Height, test.ShouldEqual, 2)
		test.That(t, res.Stats.MinVal, test.ShouldEqual, rimage.Depth(0))
		test.That(t, res.Stats.MaxVal, test.ShouldEqual, rimage.Depth(10000))
		test.That(t, res.Stats.SampleDepthM, test.ShouldEqual, 0.0)
		test.That(t, res.Stats.MeanDepth, test.ShouldEqual, 6250.0)
		test.That(t, res.Stats.StdDevDepth, test.ShouldAlmostEqual, math.Sqrt(17187500))
	}
}

func TestRunFlat(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	dm, err := rimage.NewDepthMapFromSamples(2, 2, []rimage.Depth{7, 7, 7, 7})
	test.That(t, err, test.ShouldBeNil)

	res, err := Run(context.Background(), dm, &config.Config{}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Range, test.ShouldResemble, rimage.Range{Min: 7, Max: 7})
	test.That(t, res.Gray.Pix, test.ShouldResemble, []uint8{0, 0, 0, 0})
	test.That(t, res.Viz, test.ShouldBeNil)
	test.That(t, res.Stats.SampleDepthM, test.ShouldAlmostEqual, 0.007)
	test.That(t, logs.FilterMessage("depth map is flat, grayscale output will be all black").Len(), test.ShouldEqual, 1)
}

func TestRunErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := Run(context.Background(), rimage.NewEmptyDepthMap(0, 0), &config.Config{}, logger)
	test.That(t, utils.IsKind(err, utils.KindPrecondition), test.ShouldBeTrue)

	_, err = Run(context.Background(), exampleDepthMap(t), &config.Config{Viz: "v.png", Colormap: "plasma"}, logger)
	test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, exampleDepthMap(t), &config.Config{Parallel: true}, logger)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestRunParallelMatchesSerial(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dm, err := rimage.NewGradientDepthMap(123, 77, 40000)
	test.That(t, err, test.ShouldBeNil)

	serial, err := Run(context.Background(), dm, &config.Config{Viz: "v.png", Colormap: "hue"}, logger)
	test.That(t, err, test.ShouldBeNil)
	parallel, err := Run(context.Background(), dm, &config.Config{Viz: "v.png", Colormap: "hue", Parallel: true}, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, parallel.Range, test.ShouldResemble, serial.Range)
	test.That(t, parallel.Gray.Pix, test.ShouldResemble, serial.Gray.Pix)
	test.That(t, parallel.Viz.Pix(), test.ShouldResemble, serial.Viz.Pix())
	test.That(t, parallel.Stats, test.ShouldResemble, serial.Stats)
}

func TestProcess(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "depth.png")
	test.That(t, rimage.WriteDepthMapToFile(input, exampleDepthMap(t)), test.ShouldBeNil)

	for _, parallel := range []bool{false, true} {
		cfg := &config.Config{
			Input:    input,
			Output:   filepath.Join(dir, "gray.png"),
			Viz:      filepath.Join(dir, "viz.png"),
			Parallel: parallel,
		}
		stats, err := Process(context.Background(), cfg, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, stats.OutputPath, test.ShouldEqual, cfg.Output)
		test.That(t, stats.VizPath, test.ShouldEqual, cfg.Viz)

		gray, err := rimage.ReadImageFromFile(cfg.Output)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, color.GrayModel.Convert(gray.At(0, 0)), test.ShouldResemble, color.Gray{Y: 0})
		test.That(t, color.GrayModel.Convert(gray.At(1, 0)), test.ShouldResemble, color.Gray{Y: 255})
		test.That(t, color.GrayModel.Convert(gray.At(0, 1)), test.ShouldResemble, color.Gray{Y: 127})

		viz, err := rimage.ReadImageFromFile(cfg.Viz)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, rimage.NewColorFromColor(viz.At(0, 0)), test.ShouldResemble, rimage.Turbo.At(0))
		test.That(t, rimage.NewColorFromColor(viz.At(1, 1)), test.ShouldResemble, rimage.Turbo.At(1))
	}
}

func TestProcessDefaultsOutput(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "depth.dat.gz")
	test.That(t, rimage.WriteDepthMapToFile(input, exampleDepthMap(t)), test.ShouldBeNil)

	wd, err := os.Getwd()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, os.Chdir(dir), test.ShouldBeNil)
	defer func() {
		test.That(t, os.Chdir(wd), test.ShouldBeNil)
	}()

	stats, err := Process(context.Background(), &config.Config{Input: input}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stats.OutputPath, test.ShouldEqual, config.DefaultOutput)
	test.That(t, stats.VizPath, test.ShouldEqual, "")
	_, err = os.Stat(filepath.Join(dir, config.DefaultOutput))
	test.That(t, err, test.ShouldBeNil)
}

func TestProcessErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()

	t.Run("missing input writes nothing", func(t *testing.T) {
		cfg := &config.Config{
			Input:  filepath.Join(dir, "missing.png"),
			Output: filepath.Join(dir, "gray.png"),
			Viz:    filepath.Join(dir, "viz.png"),
		}
		_, err := Process(context.Background(), cfg, logger)
		test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)
		_, err = os.Stat(cfg.Output)
		test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
		_, err = os.Stat(cfg.Viz)
		test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
	})

	t.Run("undecodable input", func(t *testing.T) {
		input := filepath.Join(dir, "garbage.png")
		test.That(t, os.WriteFile(input, []byte("not an image"), 0o600), test.ShouldBeNil)
		_, err := Process(context.Background(), &config.Config{Input: input, Output: filepath.Join(dir, "g.png")}, logger)
		test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Process(context.Background(), &config.Config{}, logger)
		test.That(t, utils.IsKind(err, utils.KindInput), test.ShouldBeTrue)
	})

	t.Run("unwritable output", func(t *testing.T) {
		input := filepath.Join(dir, "depth.png")
		test.That(t, rimage.WriteDepthMapToFile(input, exampleDepthMap(t)), test.ShouldBeNil)
		for _, parallel := range []bool{false, true} {
			cfg := &config.Config{
				Input:    input,
				Output:   filepath.Join(dir, "no", "such", "dir", "gray.png"),
				Parallel: parallel,
			}
			_, err := Process(context.Background(), cfg, logger)
			test.That(t, utils.IsKind(err, utils.KindOutput), test.ShouldBeTrue)
			test.That(t, err.Error(), test.ShouldContainSubstring, "gray.png")
		}
	})
}

func TestStatsReport(t *testing.T) {
	var buf bytes.Buffer
	stats := Stats{
		Width:        640,
		Height:       480,
		MinVal:       312,
		MaxVal:       9870,
		SampleDepthM: 1.5,
		OutputPath:   "depth_grayscale.png",
	}
	test.That(t, stats.Report(&buf), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual, `Original Resolution: 640x480
Data type: u16
Shape: (480, 640, 1)
Depth in meters (sample): 1.5 m
Min depth: 312
Max depth: 9870
Saved grayscale output to depth_grayscale.png
`)

	buf.Reset()
	stats.SampleDepthM = 0
	stats.VizPath = "viz.png"
	test.That(t, stats.Report(&buf), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "Depth in meters (sample): 0 m\n")
	test.That(t, buf.String(), test.ShouldEndWith, "Saved visualization to viz.png\n")
}
