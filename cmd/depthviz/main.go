// Package main is the depthviz command: it turns a 16-bit depth image into a
// normalized grayscale image and an optional false color visualization.
package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/depthviz/config"
	"go.viam.com/depthviz/logging"
	"go.viam.com/depthviz/pipeline"
	"go.viam.com/depthviz/rimage"
	"go.viam.com/depthviz/utils"
)

const (
	// Flags.
	flagConfig   = "config"
	flagDebug    = "debug"
	flagLogFile  = "log-file"
	flagInput    = "input"
	flagOutput   = "output"
	flagViz      = "viz"
	flagColormap = "colormap"
	flagParallel = "parallel"
	flagWidth    = "width"
	flagHeight   = "height"
	flagMaxDepth = "max-depth"
)

func main() {
	if err := realMain(os.Args, os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func realMain(args []string, out, errOut io.Writer) error {
	return newApp(out, errOut).Run(args)
}

type runner struct {
	logger    logging.Logger
	logCloser io.Closer
	fileCfg   config.Config
}

func processFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagInput,
			Aliases: []string{"i"},
			Usage:   "16-bit depth image `FILE` (png, tiff, dat, dat.gz, ...)",
			EnvVars: []string{"DEPTHVIZ_INPUT"},
		},
		&cli.StringFlag{
			Name:        flagOutput,
			Aliases:     []string{"o"},
			Usage:       "where to save the normalized grayscale image",
			DefaultText: config.DefaultOutput,
			EnvVars:     []string{"DEPTHVIZ_OUTPUT"},
		},
		&cli.StringFlag{
			Name:    flagViz,
			Usage:   "where to save the colorized visualization, if wanted",
			EnvVars: []string{"DEPTHVIZ_VIZ"},
		},
		&cli.StringFlag{
			Name:        flagColormap,
			Usage:       fmt.Sprintf("colormap for the visualization, one of %v", rimage.ColormapNames),
			DefaultText: rimage.ColormapTurbo,
			EnvVars:     []string{"DEPTHVIZ_COLORMAP"},
		},
		&cli.BoolFlag{
			Name:  flagParallel,
			Usage: "split the work across all cores",
		},
	}
}

func newApp(out, errOut io.Writer) *cli.App {
	r := &runner{logger: logging.NewBlankLogger("depthviz")}

	return &cli.App{
		Name:      "depthviz",
		Usage:     "visualize 16-bit depth images",
		Writer:    out,
		ErrWriter: errOut,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to a rotated `FILE`",
			},
		}, processFlags()...),
		Before: r.before,
		After:  r.after,
		Action: r.process,
		Commands: []*cli.Command{
			{
				Name:   "process",
				Usage:  "normalize a depth image and optionally colorize it",
				Flags:  processFlags(),
				Action: r.process,
			},
			{
				Name:  "generate",
				Usage: "write a synthetic diagonal gradient depth map",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagOutput,
						Aliases:  []string{"o"},
						Usage:    "where to save the depth map (png, tiff, dat, dat.gz)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  flagWidth,
						Value: 64,
					},
					&cli.IntFlag{
						Name:  flagHeight,
						Value: 64,
					},
					&cli.IntFlag{
						Name:  flagMaxDepth,
						Value: 10000,
						Usage: "depth at the bottom right corner, in millimeters",
					},
				},
				Action: r.generate,
			},
		},
	}
}

func (r *runner) before(c *cli.Context) error {
	switch {
	case c.String(flagLogFile) != "":
		level := logging.INFO
		if c.Bool(flagDebug) {
			level = logging.DEBUG
		}
		r.logger, r.logCloser = logging.NewFileLogger("depthviz", c.String(flagLogFile), level)
	case c.Bool(flagDebug):
		r.logger = logging.NewDebugLogger("depthviz")
	}
	path := c.String(flagConfig)
	if path == "" {
		return nil
	}
	cfg, err := config.Read(c.Context, path, r.logger)
	if err != nil {
		return err
	}
	r.fileCfg = *cfg
	if cfg.Debug {
		if r.logCloser == nil && !c.Bool(flagDebug) {
			r.logger = logging.NewDebugLogger("depthviz")
		}
		r.logger.SetLevel(logging.DEBUG)
	}
	return nil
}

func (r *runner) after(c *cli.Context) error {
	if r.logCloser == nil {
		return nil
	}
	return r.logCloser.Close()
}

func (r *runner) process(c *cli.Context) error {
	if c.Args().Present() {
		return utils.NewInputErrorf("unexpected arguments %v", c.Args().Slice())
	}
	cfg := r.fileCfg.Merge(config.Config{
		Input:    c.String(flagInput),
		Output:   c.String(flagOutput),
		Viz:      c.String(flagViz),
		Colormap: c.String(flagColormap),
		Parallel: c.Bool(flagParallel),
	})
	stats, err := pipeline.Process(c.Context, &cfg, r.logger)
	if err != nil {
		return err
	}
	return stats.Report(c.App.Writer)
}

func (r *runner) generate(c *cli.Context) error {
	maxDepth := c.Int(flagMaxDepth)
	if maxDepth < 0 || maxDepth > math.MaxUint16 {
		return utils.NewInputErrorf("%s must be within [0, %d], got %d", flagMaxDepth, math.MaxUint16, maxDepth)
	}
	dm, err := rimage.NewGradientDepthMap(c.Int(flagWidth), c.Int(flagHeight), rimage.Depth(maxDepth))
	if err != nil {
		return utils.NewInputError(errors.Wrap(err, "cannot generate depth map"))
	}
	path := c.String(flagOutput)
	if err := rimage.WriteDepthMapToFile(path, dm); err != nil {
		return err
	}
	r.logger.Debugw("generated depth map", "path", path, "width", dm.Width(), "height", dm.Height())
	fmt.Fprintf(c.App.Writer, "Saved %dx%d synthetic depth map to %s\n", dm.Width(), dm.Height(), path)
	return nil
}
