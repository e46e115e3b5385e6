package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("SUISTAT_ADDR"),
			Destination: &s.Addr,
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Grace period for in-flight requests on shutdown",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("SUISTAT_SHUTDOWN_TIMEOUT"),
			Destination: &s.ShutdownTimeout,
		},
	}
}

// Validate validates the server configuration
func (s *Server) Validate() error {
	if s.Addr == "" {
		return goerr.New("server address is required")
	}
	if s.ShutdownTimeout <= 0 {
		return goerr.New("shutdown timeout must be positive", goerr.V("timeout", s.ShutdownTimeout))
	}
	return nil
}

// LogValue returns structured log value
func (s Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr),
		slog.Duration("shutdown_timeout", s.ShutdownTimeout),
	)
}
