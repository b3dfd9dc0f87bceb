package config

import (
	"bytes"
	"context"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"go.viam.com/depthviz/logging"
	"go.viam.com/depthviz/utils"
)

// Read reads a config from the given file, expanding ${ENV} references first.
func Read(ctx context.Context, filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, utils.NewInputError(errors.Wrapf(err, "cannot read config %s", filePath))
	}
	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(ctx context.Context, originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, utils.NewInputError(errors.Wrap(err, "failed to read Config"))
	}

	cfg := Config{ConfigFilePath: originalPath}
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, utils.NewInputError(errors.Wrapf(err, "failed to decode Config from json5"))
	}
	logger.Debugw("read config", "path", originalPath, "input", cfg.Input, "output", cfg.Output, "viz", cfg.Viz)
	return &cfg, nil
}
