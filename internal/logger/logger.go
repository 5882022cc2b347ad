package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config returns the zap configuration for mode. "debug" gives a coloured
// console encoder, anything else JSON suitable for log shipping.
func Config(mode string) zap.Config {
	var config zap.Config

	if mode == "debug" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	return config
}

// New builds the application logger. There is nothing to log through when
// that fails, so the error goes to stderr and the process exits.
func New(mode string) *zap.Logger {
	return mustBuild(Config(mode), os.Stderr, os.Exit)
}

func mustBuild(config zap.Config, stderr io.Writer, exit func(int)) *zap.Logger {
	logger, err := config.Build()
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		exit(1)
		return nil
	}

	return logger
}
