// Package pipeline turns a 16-bit depth raster into a normalized grayscale
// image and, optionally, a false color visualization.
package pipeline

import (
	"context"
	"image"

	"go.viam.com/depthviz/config"
	"go.viam.com/depthviz/logging"
	"go.viam.com/depthviz/rimage"
	"go.viam.com/depthviz/utils"
)

// Result is everything a run computes before anything is written.
type Result struct {
	Range rimage.Range
	Gray  *image.Gray
	// Viz is nil unless a visualization was requested.
	Viz   *rimage.Image
	Stats Stats
}

// Run finds the range of dm, normalizes it and, when cfg.Viz is set,
// colorizes it. Nothing touches the filesystem.
func Run(ctx context.Context, dm *rimage.DepthMap, cfg *config.Config, logger logging.Logger) (Result, error) {
	logger = logger.Sublogger("pipeline")

	var (
		r   rimage.Range
		err error
	)
	if cfg.Parallel {
		r, err = rimage.FindRangeParallel(ctx, dm)
	} else {
		r, err = rimage.FindRange(dm)
	}
	if err != nil {
		return Result{}, err
	}
	logger.Debugw("found range", "min", r.Min, "max", r.Max, "flat", r.Flat())
	if r.Flat() {
		logger.Warnw("depth map is flat, grayscale output will be all black", "depth", r.Min)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	var gray *image.Gray
	if cfg.Parallel {
		gray, err = rimage.NormalizeParallel(ctx, dm, r)
		if err != nil {
			return Result{}, err
		}
	} else {
		gray = rimage.Normalize(dm, r)
	}

	var viz *rimage.Image
	if cfg.Viz != "" {
		cm, err := rimage.ColormapByName(cfg.Colormap)
		if err != nil {
			return Result{}, err
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if cfg.Parallel {
			viz, err = rimage.ColorizeParallel(ctx, gray, cm)
			if err != nil {
				return Result{}, err
			}
		} else {
			viz = rimage.Colorize(gray, cm)
		}
	}

	stats, err := newStats(dm, r)
	if err != nil {
		return Result{}, err
	}
	logger.Debugw("depth statistics", "mean", stats.MeanDepth, "stddev", stats.StdDevDepth)
	return Result{Range: r, Gray: gray, Viz: viz, Stats: stats}, nil
}

// Process reads cfg.Input, runs the pipeline on it and writes the grayscale
// image to cfg.Output and the visualization, if any, to cfg.Viz. A failed
// read writes nothing.
func Process(ctx context.Context, cfg *config.Config, logger logging.Logger) (Stats, error) {
	if err := cfg.Validate("config"); err != nil {
		return Stats{}, utils.NewInputError(err)
	}

	dm, err := rimage.ReadDepthMapFromFile(cfg.Input)
	if err != nil {
		return Stats{}, err
	}
	logger.Infow("read depth map", "path", cfg.Input, "width", dm.Width(), "height", dm.Height())

	res, err := Run(ctx, dm, cfg, logger)
	if err != nil {
		return Stats{}, err
	}

	writes := []utils.SimpleFunc{
		func(ctx context.Context) error {
			return rimage.WriteImageToFile(cfg.Output, res.Gray)
		},
	}
	if res.Viz != nil {
		writes = append(writes, func(ctx context.Context) error {
			return rimage.WriteImageToFile(cfg.Viz, res.Viz)
		})
	}

	if cfg.Parallel {
		if _, err := utils.RunInParallel(ctx, writes); err != nil {
			return Stats{}, err
		}
	} else {
		for _, write := range writes {
			if err := write(ctx); err != nil {
				return Stats{}, err
			}
		}
	}

	res.Stats.OutputPath = cfg.Output
	if res.Viz != nil {
		res.Stats.VizPath = cfg.Viz
	}
	logger.Infow("wrote outputs", "output", res.Stats.OutputPath, "viz", res.Stats.VizPath)
	return res.Stats, nil
}
