// Package logging wires the root command's --log-* flags into a
// chord/Environment-ready logger.Logger, mirroring the teacher's
// cmd/node/main.go construction (zapfactory.New behind the Logger
// interface, falling back to a no-op when logging isn't active).
package logging

import (
	"fmt"

	"chordsim/internal/logger"

	"github.com/spf13/cobra"
)

// Flags are the root command's logging options.
type Flags struct {
	Active bool
	Level  string
	File   string
}

// Register attaches the logging flags to the root command.
func Register(cmd *cobra.Command, f *Flags) {
	cmd.PersistentFlags().BoolVar(&f.Active, "log", false, "enable structured logging (default: silent)")
	cmd.PersistentFlags().StringVar(&f.Level, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&f.File, "log-file", "", "rotate logs to this file instead of stderr")
}

// Build constructs the logger.Logger a run should use: a NopLogger unless
// --log was passed, in which case a zap-backed logger is built (with
// lumberjack rotation when --log-file is set).
func (f Flags) Build() (logger.Logger, error) {
	if !f.Active {
		return &logger.NopLogger{}, nil
	}
	zapLog, err := logger.New(logger.Config{
		Active: true,
		Level:  f.Level,
		File:   f.File,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.NewZapAdapter(zapLog), nil
}
