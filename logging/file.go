package logging

import (
	"io"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileLogger returns a logger that writes to stderr and to a size rotated
// file at path. The returned closer releases the file.
func NewFileLogger(name, path string, level Level) (Logger, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   filepath.Clean(path),
		MaxSize:    64,
		MaxBackups: 2,
		Compress:   true,
	}

	atomicLevel := zap.NewAtomicLevelAt(level.AsZap())
	config := NewLoggerConfig()
	config.Level = atomicLevel

	// no colors in files.
	fileEncoderConfig := config.EncoderConfig
	fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoderConfig), zapcore.AddSync(file), atomicLevel)

	core := zapcore.NewTee(zap.Must(config.Build()).Core(), fileCore)
	return newImpl(name, atomicLevel, core), file
}
