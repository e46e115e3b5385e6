package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Dashboard holds chart layout configuration
type Dashboard struct {
	ConfigPath   string
	Debounce     time.Duration
	InitialWidth float64
}

// Flags returns CLI flags for Dashboard configuration
func (d *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dashboard-config",
			Usage:       "Path to a YAML file overriding chart layout settings",
			Category:    "Dashboard",
			Sources:     cli.EnvVars("SUISTAT_DASHBOARD_CONFIG"),
			Destination: &d.ConfigPath,
		},
		&cli.DurationFlag{
			Name:        "debounce",
			Usage:       "Delay between the last container resize and the redraw (0 keeps the configured value)",
			Category:    "Dashboard",
			Sources:     cli.EnvVars("SUISTAT_DEBOUNCE"),
			Destination: &d.Debounce,
		},
		&cli.FloatFlag{
			Name:        "container-width",
			Usage:       "Container width in pixels used until a client reports its own",
			Category:    "Dashboard",
			Value:       800,
			Sources:     cli.EnvVars("SUISTAT_CONTAINER_WIDTH"),
			Destination: &d.InitialWidth,
		},
	}
}

// Configure loads the dashboard configuration. Settings missing from the file keep their defaults.
func (d *Dashboard) Configure() (*model.DashboardConfig, error) {
	cfg := model.DefaultDashboardConfig()

	if d.ConfigPath != "" {
		data, err := os.ReadFile(d.ConfigPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read dashboard config", goerr.V("path", d.ConfigPath))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, goerr.Wrap(err, "failed to parse dashboard config", goerr.V("path", d.ConfigPath))
		}
	}

	if d.Debounce != 0 {
		cfg.Debounce = d.Debounce
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid dashboard config", goerr.V("path", d.ConfigPath))
	}
	return cfg, nil
}

// LogValue returns structured log value
func (d Dashboard) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config_path", d.ConfigPath),
		slog.Duration("debounce", d.Debounce),
		slog.Float64("container_width", d.InitialWidth),
	)
}
