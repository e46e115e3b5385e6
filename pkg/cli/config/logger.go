package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
	Output string
}

// Flags returns CLI flags for Logger configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("SUISTAT_LOG_LEVEL"),
			Destination: &l.Level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json, auto)",
			Category:    "Logging",
			Value:       "auto",
			Sources:     cli.EnvVars("SUISTAT_LOG_FORMAT"),
			Destination: &l.Format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output (stdout, stderr)",
			Category:    "Logging",
			Value:       "stderr",
			Sources:     cli.EnvVars("SUISTAT_LOG_OUTPUT"),
			Destination: &l.Output,
		},
	}
}

// Configure sets up the logger based on configuration
func (l *Logger) Configure() (*slog.Logger, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	if l.Output == "stdout" {
		w = os.Stdout
	}

	logger := logging.NewLoggerWithFormat(logging.ParseLogLevel(l.Level), w, logging.ParseFormat(l.Format))
	return logger, nil
}

// LogValue returns structured log value
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.Level),
		slog.String("format", l.Format),
		slog.String("output", l.Output),
	)
}

// Validate validates the logger configuration
func (l *Logger) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return goerr.New("invalid log level", goerr.V("level", l.Level))
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
		"auto":    true,
		"":        true, // empty means auto
	}
	if !validFormats[l.Format] {
		return goerr.New("invalid log format", goerr.V("format", l.Format))
	}

	switch l.Output {
	case "stdout", "stderr", "":
	default:
		return goerr.New("invalid log output", goerr.V("output", l.Output))
	}

	return nil
}
