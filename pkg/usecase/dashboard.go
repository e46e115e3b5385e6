package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/aggregate"
	"github.com/secmon-lab/suistat/pkg/service/chart"
	"github.com/secmon-lab/suistat/pkg/service/dataset"
)

// Dashboard turns a selection into a drawn chart and filled display slots
type Dashboard struct {
	cfg      *model.DashboardConfig
	cache    *dataset.Cache
	canvas   interfaces.Canvas
	slots    interfaces.DisplaySlots
	notifier interfaces.RenderNotifier

	line *chart.LineRenderer
	bar  *chart.BarRenderer
}

// DashboardOption configures a Dashboard
type DashboardOption func(*Dashboard)

// WithRenderNotifier publishes every completed render to n
func WithRenderNotifier(n interfaces.RenderNotifier) DashboardOption {
	return func(d *Dashboard) {
		d.notifier = n
	}
}

// NewDashboard creates a Dashboard
func NewDashboard(cfg *model.DashboardConfig, cache *dataset.Cache, canvas interfaces.Canvas, slots interfaces.DisplaySlots, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		cfg:    cfg,
		cache:  cache,
		canvas: canvas,
		slots:  slots,
		line:   chart.NewLineRenderer(cfg),
		bar:    chart.NewBarRenderer(cfg),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the dashboard configuration
func (d *Dashboard) Config() *model.DashboardConfig {
	return d.cfg
}

// Records returns the cached dataset, loading it on first use
func (d *Dashboard) Records(ctx context.Context) ([]*model.Record, error) {
	return d.cache.Load(ctx)
}

// SeriesView is the aggregated data behind a selection
type SeriesView struct {
	Selection model.Selection      `json:"selection"`
	Years     []model.YearTotal    `json:"years,omitempty"`
	Brackets  *model.BracketSeries `json:"brackets,omitempty"`
}

// Series aggregates the records for a selection
func (d *Dashboard) Series(ctx context.Context, sel model.Selection) (*SeriesView, error) {
	records, err := d.cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	view := &SeriesView{Selection: sel}
	switch sel.ChartKind {
	case types.ChartKindLine:
		view.Years = aggregate.ByYear(records, sel.Country)
		if len(view.Years) == 0 {
			return nil, goerr.Wrap(model.ErrEmptySelection, "no yearly data", goerr.V("country", sel.Country))
		}
	case types.ChartKindBar:
		view.Brackets = aggregate.ByAgeBracket(records, sel.Country, sel.Year)
		if view.Brackets.IsEmpty() {
			return nil, goerr.Wrap(model.ErrEmptySelection, "no age bracket data",
				goerr.V("country", sel.Country),
				goerr.V("year", sel.Year))
		}
	default:
		return nil, goerr.Wrap(model.ErrUnknownChartKind, "cannot aggregate", goerr.V("kind", sel.ChartKind))
	}
	return view, nil
}

// Compose builds the scene and summary for a selection without touching the canvas
func (d *Dashboard) Compose(ctx context.Context, sel model.Selection, dims model.Dimensions) (*model.Scene, model.Summary, error) {
	records, err := d.cache.Load(ctx)
	if err != nil {
		return nil, model.Summary{}, err
	}

	switch sel.ChartKind {
	case types.ChartKindLine:
		series := aggregate.ByYear(records, sel.Country)
		if len(series) == 0 {
			return nil, model.Summary{}, goerr.Wrap(model.ErrEmptySelection, "no yearly data",
				goerr.V("country", sel.Country))
		}
		return d.line.Render(series, dims)

	case types.ChartKindBar:
		series := aggregate.ByAgeBracket(records, sel.Country, sel.Year)
		if series.IsEmpty() {
			return nil, model.Summary{}, goerr.Wrap(model.ErrEmptySelection, "no age bracket data",
				goerr.V("country", sel.Country),
				goerr.V("year", sel.Year))
		}
		return d.bar.Render(series, dims)

	default:
		return nil, model.Summary{}, goerr.Wrap(model.ErrUnknownChartKind, "cannot compose chart",
			goerr.V("kind", sel.ChartKind))
	}
}

// Redraw clears the canvas and draws the chart for sel. A selection with no
// matching records leaves the canvas blank and the slots unchanged.
func (d *Dashboard) Redraw(ctx context.Context, sel model.Selection, dims model.Dimensions) error {
	if !dims.Valid() {
		return goerr.Wrap(model.ErrLayoutNotReady, "cannot redraw",
			goerr.V("width", dims.Width),
			goerr.V("height", dims.Height))
	}

	d.canvas.Clear(ctx)

	scene, summary, err := d.Compose(ctx, sel, dims)
	if err != nil {
		if errors.Is(err, model.ErrEmptySelection) {
			ctxlog.From(ctx).Info("Nothing to draw for selection",
				"country", sel.Country,
				"year", sel.Year,
				"chart", sel.ChartKind)
			return nil
		}
		return err
	}

	scene.ID = types.NewRenderID()

	values := make(map[types.SlotID]model.SlotValue, len(types.AllSlots()))
	for _, slot := range types.AllSlots() {
		values[slot] = summary.Slot(slot)
	}
	d.slots.SetSlots(ctx, values)

	if err := d.canvas.Draw(ctx, scene); err != nil {
		return goerr.Wrap(err, "failed to draw chart", goerr.V("render_id", scene.ID))
	}

	ctxlog.From(ctx).Debug("Chart drawn",
		"render_id", scene.ID,
		"country", sel.Country,
		"chart", sel.ChartKind)

	// Render events are published in redraw order.
	if d.notifier != nil {
		if err := d.notifier.NotifyRender(ctx, sel, scene, summary); err != nil {
			ctxlog.From(ctx).Warn("Failed to publish render", "error", err, "render_id", scene.ID)
		}
	}

	return nil
}
