package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/cli/config"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/chart"
	"github.com/secmon-lab/suistat/pkg/service/dataset"
	"github.com/secmon-lab/suistat/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type renderOptions struct {
	Country string
	Year    string
	Chart   string
	Width   float64
	Output  string
}

func (o *renderOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "country",
			Aliases:     []string{"c"},
			Usage:       "Country to chart (default: first country in the dataset)",
			Destination: &o.Country,
		},
		&cli.StringFlag{
			Name:        "year",
			Aliases:     []string{"y"},
			Usage:       "Year for the bar chart (default: first year of the country)",
			Destination: &o.Year,
		},
		&cli.StringFlag{
			Name:        "chart",
			Usage:       "Chart type (line, bar)",
			Value:       "line",
			Destination: &o.Chart,
		},
		&cli.FloatFlag{
			Name:        "width",
			Usage:       "Container width in pixels",
			Value:       800,
			Destination: &o.Width,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file (.svg or .png). SVG is written to stdout when empty",
			Destination: &o.Output,
		},
	}
}

func cmdRender() *cli.Command {
	var (
		opts         renderOptions
		sourceCfg    config.Source
		dashboardCfg config.Dashboard
	)

	return &cli.Command{
		Name:  "render",
		Usage: "Render one chart to a file and print its summary",
		Flags: joinFlags(opts.flags(), sourceCfg.Flags(), dashboardCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Debug("Rendering chart",
				slog.Any("source", sourceCfg),
				slog.Any("dashboard", dashboardCfg),
				slog.String("country", opts.Country),
				slog.String("chart", opts.Chart))

			dashCfg, err := dashboardCfg.Configure()
			if err != nil {
				return err
			}
			src, err := sourceCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			dashboard := usecase.NewDashboard(dashCfg, dataset.NewCache(src), nil, nil)
			sel, err := resolveSelection(ctx, usecase.NewOptions(dashboard), opts)
			if err != nil {
				return err
			}

			dims, ok := dashCfg.Layout(opts.Width)
			if !ok {
				return goerr.Wrap(model.ErrLayoutNotReady, "width too small", goerr.V("width", opts.Width))
			}

			scene, summary, err := dashboard.Compose(ctx, sel, dims)
			if err != nil {
				return err
			}
			scene.ID = types.NewRenderID()

			summaryOut := io.Writer(os.Stdout)
			if opts.Output == "" || opts.Output == "-" {
				if _, err := io.WriteString(os.Stdout, chart.SVG(scene)); err != nil {
					return goerr.Wrap(err, "failed to write svg")
				}
				summaryOut = os.Stderr
			} else if err := writeScene(scene, dashCfg.Headroom, opts.Output); err != nil {
				return err
			}

			return printSummary(summaryOut, sel, summary)
		},
	}
}

func resolveSelection(ctx context.Context, options *usecase.Options, opts renderOptions) (model.Selection, error) {
	kind, err := types.ParseChartKind(opts.Chart)
	if err != nil {
		return model.Selection{}, goerr.Wrap(model.ErrUnknownChartKind, "invalid --chart", goerr.V("chart", opts.Chart))
	}
	sel := model.Selection{Country: opts.Country, ChartKind: kind}

	if sel.Country == "" {
		countries, err := options.Countries(ctx)
		if err != nil {
			return model.Selection{}, err
		}
		if len(countries) == 0 {
			return model.Selection{}, goerr.Wrap(model.ErrEmptySelection, "dataset has no countries")
		}
		sel.Country = countries[0]
	}

	if opts.Year != "" {
		year, err := strconv.Atoi(opts.Year)
		if err != nil {
			return model.Selection{}, goerr.Wrap(err, "invalid --year", goerr.V("year", opts.Year))
		}
		sel.Year = year
	} else {
		years, err := options.Years(ctx, sel.Country)
		if err != nil {
			return model.Selection{}, err
		}
		if len(years) > 0 {
			sel.Year = years[0]
		}
	}

	return sel, nil
}

func writeScene(scene *model.Scene, headroom float64, path string) error {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		buf.WriteString(chart.SVG(scene))
	case ".png":
		if err := chart.PNG(scene, headroom, &buf); err != nil {
			return err
		}
	default:
		return goerr.New("unsupported output format, use .svg or .png", goerr.V("path", path))
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return goerr.Wrap(err, "failed to write chart", goerr.V("path", path))
	}
	return nil
}

func printSummary(w io.Writer, sel model.Selection, summary model.Summary) error {
	header := sel.Country + " / " + sel.ChartKind.Label()
	if sel.YearVisible() {
		header += " / " + strconv.Itoa(sel.Year)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return goerr.Wrap(err, "failed to print summary")
	}
	for _, slot := range types.AllSlots() {
		v := summary.Slot(slot)
		if _, err := fmt.Fprintf(w, "  %-34s %s\n", v.Heading+":", v.Value); err != nil {
			return goerr.Wrap(err, "failed to print summary")
		}
	}
	return nil
}
