package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/cli/config"
	controller "github.com/secmon-lab/suistat/pkg/controller/http"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/board"
	"github.com/secmon-lab/suistat/pkg/service/dataset"
	"github.com/secmon-lab/suistat/pkg/service/widget"
	"github.com/secmon-lab/suistat/pkg/usecase"
	"github.com/secmon-lab/suistat/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		sourceCfg    config.Source
		dashboardCfg config.Dashboard
		natsCfg      config.NATS
	)

	flags := joinFlags(
		serverCfg.Flags(),
		sourceCfg.Flags(),
		dashboardCfg.Flags(),
		natsCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the dashboard HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting suistat server",
				slog.Any("server", serverCfg),
				slog.Any("source", sourceCfg),
				slog.Any("dashboard", dashboardCfg),
				slog.Any("nats", natsCfg),
			)

			if err := serverCfg.Validate(); err != nil {
				return err
			}

			dashCfg, err := dashboardCfg.Configure()
			if err != nil {
				return err
			}

			src, err := sourceCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			defaultChart := dashCfg.DefaultChart
			if defaultChart == "" {
				defaultChart = types.ChartKindLine
			}

			b := board.New()
			country := widget.New("")
			year := widget.New("")
			chartWidget := widget.New(defaultChart.Label())
			container := widget.New(dashboardCfg.InitialWidth)

			var dashOpts []usecase.DashboardOption
			if natsCfg.IsConfigured() {
				bridge, err := natsCfg.Configure(ctx)
				if err != nil {
					return err
				}
				defer bridge.Close()

				if err := bridge.BindSelection(ctx, country, year, chartWidget); err != nil {
					return err
				}
				dashOpts = append(dashOpts, usecase.WithRenderNotifier(bridge))
			}

			dashboard := usecase.NewDashboard(dashCfg, dataset.NewCache(src), b, b, dashOpts...)
			options := usecase.NewOptions(dashboard)
			cancelBind := options.Bind(ctx, country, year)
			defer cancelBind()

			layout := usecase.NewLayout(dashCfg, b, usecase.SystemScheduler())
			ctrl := usecase.NewController(dashboard, layout, usecase.NewSelection(country, year, chartWidget), container)

			runCtx, stopController := context.WithCancel(ctx)
			defer stopController()
			controllerDone := make(chan struct{})
			go func() {
				defer close(controllerDone)
				if err := ctrl.Run(runCtx); err != nil {
					logger.Error("Dashboard controller stopped", "error", err)
				}
			}()

			// The dataset loads in the background. Selecting the first country triggers the first chart.
			async.Dispatch(ctx, "warm-up", func(ctx context.Context) error {
				return options.Init(ctx, country, year)
			})

			server, err := controller.NewServer(ctx, serverCfg.Addr,
				controller.NewUseCases(
					controller.WithDashboard(dashboard),
					controller.WithOptions(options),
					controller.WithStatus(ctrl),
				),
				&controller.Widgets{
					Country:   country,
					Year:      year,
					Chart:     chartWidget,
					Container: container,
				},
				b,
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			stopController()
			<-controllerDone

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
