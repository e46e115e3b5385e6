package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/nats-io/nats.go"
	"github.com/secmon-lab/suistat/pkg/service/events"
	"github.com/urfave/cli/v3"
)

// NATS holds configuration of the optional message bus bridge
type NATS struct {
	URL    string
	Prefix string
}

// Flags returns CLI flags for NATS configuration
func (n *NATS) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nats-url",
			Usage:       "NATS server URL. Selection changes are received and renders are published when set",
			Category:    "NATS",
			Sources:     cli.EnvVars("SUISTAT_NATS_URL"),
			Destination: &n.URL,
		},
		&cli.StringFlag{
			Name:        "nats-prefix",
			Usage:       "Subject prefix",
			Category:    "NATS",
			Value:       "suistat",
			Sources:     cli.EnvVars("SUISTAT_NATS_PREFIX"),
			Destination: &n.Prefix,
		},
	}
}

// IsConfigured reports whether a NATS URL is set
func (n *NATS) IsConfigured() bool {
	return n.URL != ""
}

// Configure connects to NATS. Connection state changes are logged with the logger of ctx.
func (n *NATS) Configure(ctx context.Context) (*events.Bridge, error) {
	if !n.IsConfigured() {
		return nil, goerr.New("nats url is required")
	}

	logger := ctxlog.From(ctx)
	bridge, err := events.Connect(n.URL, n.Prefix,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect nats", goerr.V("url", n.URL))
	}
	return bridge, nil
}

// LogValue returns structured log value
func (n NATS) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", n.URL),
		slog.String("prefix", n.Prefix),
	)
}
