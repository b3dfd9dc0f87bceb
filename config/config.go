// Package config defines how a depthviz run is described, either from a JSON5
// file or from command line flags.
package config

import (
	"go.viam.com/utils"

	"go.viam.com/depthviz/rimage"
	rutils "go.viam.com/depthviz/utils"
)

// DefaultOutput is where the grayscale image goes when nothing else is asked for.
const DefaultOutput = "depth_grayscale.png"

// Config describes a single depthviz run.
type Config struct {
	// Input is the 16-bit depth raster to read.
	Input string `json:"input"`
	// Output receives the normalized 8-bit grayscale image.
	Output string `json:"output,omitempty"`
	// Viz, when set, receives the colorized visualization.
	Viz string `json:"viz,omitempty"`
	// Colormap names the colormap used for Viz. Empty means turbo.
	Colormap string `json:"colormap,omitempty"`
	// Parallel splits the per-pixel sweeps across workers.
	Parallel bool `json:"parallel,omitempty"`
	Debug    bool `json:"debug,omitempty"`

	ConfigFilePath string `json:"-"`
}

// Merge overlays every non-zero field of other on top of a copy of cfg.
func (cfg Config) Merge(other Config) Config {
	if other.Input != "" {
		cfg.Input = other.Input
	}
	if other.Output != "" {
		cfg.Output = other.Output
	}
	if other.Viz != "" {
		cfg.Viz = other.Viz
	}
	if other.Colormap != "" {
		cfg.Colormap = other.Colormap
	}
	cfg.Parallel = cfg.Parallel || other.Parallel
	cfg.Debug = cfg.Debug || other.Debug
	return cfg
}

// Validate ensures all parts of the config are valid and fills in defaults.
func (cfg *Config) Validate(path string) error {
	if cfg.Input == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "input")
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if err := validateImagePath(path, "output", cfg.Output); err != nil {
		return err
	}
	if cfg.Viz != "" {
		if err := validateImagePath(path, "viz", cfg.Viz); err != nil {
			return err
		}
	}
	if _, err := rimage.ColormapByName(cfg.Colormap); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

func validateImagePath(path, field, value string) error {
	mimeType, gzipped := rutils.MimeTypeFromPath(value)
	if mimeType == "" || gzipped || mimeType == rutils.MimeTypeRawDepth {
		return utils.NewConfigValidationError(path, rutils.NewInputErrorf("%s %q does not name a writable image format", field, value))
	}
	return nil
}
