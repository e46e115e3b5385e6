package chart

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// monthsPerYear turns yearly totals into the displayed rate.
// This is a proxy, not a population-normalized rate.
const monthsPerYear = 12

// LineRenderer draws yearly totals as a single line
type LineRenderer struct {
	cfg *model.DashboardConfig
}

// NewLineRenderer creates a LineRenderer
func NewLineRenderer(cfg *model.DashboardConfig) *LineRenderer {
	return &LineRenderer{cfg: cfg}
}

// Render lays out the series. An empty series returns ErrEmptySelection.
func (r *LineRenderer) Render(series []model.YearTotal, dims model.Dimensions) (*model.Scene, model.Summary, error) {
	if err := checkDimensions(dims); err != nil {
		return nil, model.Summary{}, err
	}
	if len(series) == 0 {
		return nil, model.Summary{}, goerr.Wrap(model.ErrEmptySelection, "no yearly totals to draw")
	}

	maxTotal := 0
	for _, yt := range series {
		if yt.Total > maxTotal {
			maxTotal = yt.Total
		}
	}

	x := yearScale{first: series[0].Year, last: series[len(series)-1].Year, r0: 0, r1: dims.Width}
	y := linearScale{d0: 0, d1: float64(maxTotal) * r.cfg.Headroom, r0: dims.Height, r1: 0}
	tickCount := r.cfg.TickCount(dims.Width)

	scene := baseScene(r.cfg, types.ChartKindLine, dims, lineGradient, lineXLabel)
	for _, year := range x.Ticks(tickCount) {
		scene.XAxis.Ticks = append(scene.XAxis.Ticks, model.Tick{
			Position: x.Map(year),
			Label:    strconv.Itoa(year),
		})
	}
	scene.YAxis = valueAxis(y, tickCount)

	for _, yt := range series {
		scene.Path = append(scene.Path, model.Point{X: x.Map(yt.Year), Y: y.Map(float64(yt.Total))})
		scene.Data = append(scene.Data, model.DataPoint{Label: strconv.Itoa(yt.Year), Value: float64(yt.Total)})
	}

	return scene, r.summarize(series), nil
}

func (r *LineRenderer) summarize(series []model.YearTotal) model.Summary {
	var total int
	var rate, male, female float64
	for _, yt := range series {
		total += yt.Total
		rate += float64(yt.Total) / monthsPerYear
		male += float64(yt.Male) / monthsPerYear
		female += float64(yt.Female) / monthsPerYear
	}
	n := float64(len(series))
	h := r.cfg.Headings

	return model.Summary{
		Total:   model.SlotValue{Heading: h.Total, Value: strconv.Itoa(total)},
		Average: model.SlotValue{Heading: h.Average, Value: formatRate(rate / n)},
		GroupA:  model.SlotValue{Heading: h.MaleRate, Value: formatRate(male / n)},
		GroupB:  model.SlotValue{Heading: h.FemaleRate, Value: formatRate(female / n)},
	}
}
