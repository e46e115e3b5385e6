package chart

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// BarRenderer draws one bar per age bracket
type BarRenderer struct {
	cfg *model.DashboardConfig
}

// NewBarRenderer creates a BarRenderer
func NewBarRenderer(cfg *model.DashboardConfig) *BarRenderer {
	return &BarRenderer{cfg: cfg}
}

// Render lays out the series. An empty series returns ErrEmptySelection.
func (r *BarRenderer) Render(series *model.BracketSeries, dims model.Dimensions) (*model.Scene, model.Summary, error) {
	if err := checkDimensions(dims); err != nil {
		return nil, model.Summary{}, err
	}
	if series.IsEmpty() {
		return nil, model.Summary{}, goerr.Wrap(model.ErrEmptySelection, "no age brackets to draw")
	}

	maxValue := 0
	for _, b := range series.Brackets {
		if b.Total > maxValue {
			maxValue = b.Total
		}
	}

	x := newBandScale(series.Keys(), 0, dims.Width, r.cfg.BarPadding)
	y := linearScale{d0: 0, d1: float64(maxValue) * r.cfg.Headroom, r0: dims.Height, r1: 0}

	scene := baseScene(r.cfg, types.ChartKindBar, dims, barGradient, barXLabel)
	// category ticks are never reduced, only the value axis
	for i, key := range x.keys {
		scene.XAxis.Ticks = append(scene.XAxis.Ticks, model.Tick{Position: x.Center(i), Label: key})
	}
	scene.YAxis = valueAxis(y, r.cfg.TickCount(dims.Width))

	for i, b := range series.Brackets {
		top := y.Map(float64(b.Total))
		scene.Bars = append(scene.Bars, model.Bar{
			Key:    b.Key,
			X:      x.Position(i),
			Y:      top,
			Width:  x.bandwidth,
			Height: dims.Height - top,
			Value:  b.Total,
		})
		scene.Data = append(scene.Data, model.DataPoint{Label: b.Key, Value: float64(b.Total)})
	}

	h := r.cfg.Headings
	summary := model.Summary{
		Total:   model.SlotValue{Heading: h.Total, Value: strconv.Itoa(series.GrandTotal)},
		Average: model.SlotValue{Heading: h.Average, Value: formatFixed2(series.Average)},
		GroupA:  model.SlotValue{Heading: h.Highest, Value: series.Highest.Key},
		GroupB:  model.SlotValue{Heading: h.Lowest, Value: series.Lowest.Key},
	}
	return scene, summary, nil
}
