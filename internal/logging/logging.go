// Package logging builds the structured logger used across the server,
// choosing a console encoder on an interactive TTY and a JSON encoder
// otherwise, with an optional rotating file sink.
package logging

import (
	"os"

	"github.com/DeRuina/timberjack"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger. FilePath, when set, routes output
// through a rotating file sink instead of the process's stderr.
type Options struct {
	Debug      bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a *zap.Logger per opts. Console output auto-detects whether
// stderr is a terminal and picks a human-readable encoder there, JSON
// otherwise (log aggregators expect JSON, humans do not).
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	var encoder zapcore.Encoder
	if opts.FilePath != "" {
		rotator := &timberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 7),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
		sink = zapcore.AddSync(rotator)
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		sink = zapcore.Lock(os.Stderr)
		if isatty.IsTerminal(os.Stderr.Fd()) {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(encoderCfg)
		} else {
			encoder = zapcore.NewJSONEncoder(encoderCfg)
		}
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller()), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
