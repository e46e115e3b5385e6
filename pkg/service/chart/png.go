package chart

import (
	"io"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// PNG rasterizes the data behind a scene with go-chart
func PNG(scene *model.Scene, headroom float64, w io.Writer) error {
	if len(scene.Data) == 0 {
		return goerr.Wrap(model.ErrEmptySelection, "scene has no data")
	}

	width := int(scene.OuterWidth())
	height := int(scene.OuterHeight())

	maxValue := 0.0
	for _, d := range scene.Data {
		if d.Value > maxValue {
			maxValue = d.Value
		}
	}
	upper := maxValue * headroom
	if upper <= 0 {
		upper = 1
	}
	yAxis := chart.YAxis{
		Name:           scene.YLabel.Text,
		Range:          &chart.ContinuousRange{Min: 0, Max: upper},
		ValueFormatter: func(v any) string { return formatSI(v.(float64)) },
	}

	start, end := scene.Gradient.Stops[0].Color, scene.Gradient.Stops[len(scene.Gradient.Stops)-1].Color

	switch scene.Kind {
	case types.ChartKindLine:
		xs := make([]float64, 0, len(scene.Data))
		ys := make([]float64, 0, len(scene.Data))
		for _, d := range scene.Data {
			year, err := strconv.Atoi(d.Label)
			if err != nil {
				return goerr.Wrap(err, "invalid year label", goerr.V("label", d.Label))
			}
			xs = append(xs, float64(year))
			ys = append(ys, d.Value)
		}
		// a single point has a zero-width x range that go-chart refuses to draw
		if len(xs) == 1 {
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
		}

		ch := chart.Chart{
			Width:      width,
			Height:     height,
			Background: chart.Style{Padding: chart.Box{Top: int(scene.Margins.Top), Left: int(scene.Margins.Left), Right: int(scene.Margins.Right), Bottom: int(scene.Margins.Bottom)}},
			XAxis: chart.XAxis{
				Name:           scene.XLabel.Text,
				ValueFormatter: func(v any) string { return strconv.Itoa(int(v.(float64))) },
			},
			YAxis: yAxis,
			Series: []chart.Series{
				chart.ContinuousSeries{
					Name:    scene.YLabel.Text,
					XValues: xs,
					YValues: ys,
					Style: chart.Style{
						StrokeColor: hexColor(end),
						StrokeWidth: scene.StrokeWidth,
					},
				},
			},
		}
		if err := ch.Render(chart.PNG, w); err != nil {
			return goerr.Wrap(err, "failed to render line chart")
		}

	case types.ChartKindBar:
		bars := make([]chart.Value, 0, len(scene.Data))
		for i, d := range scene.Data {
			fill := start
			if i%2 == 1 {
				fill = end
			}
			bars = append(bars, chart.Value{
				Label: d.Label,
				Value: d.Value,
				Style: chart.Style{FillColor: hexColor(fill), StrokeColor: hexColor(end), StrokeWidth: 1},
			})
		}
		barWidth := 40
		if len(scene.Bars) > 0 {
			barWidth = int(scene.Bars[0].Width)
		}

		ch := chart.BarChart{
			Width:      width,
			Height:     height,
			BarWidth:   barWidth,
			Background: chart.Style{Padding: chart.Box{Top: int(scene.Margins.Top), Left: int(scene.Margins.Left), Right: int(scene.Margins.Right), Bottom: int(scene.Margins.Bottom)}},
			YAxis:      yAxis,
			Bars:       bars,
		}
		if err := ch.Render(chart.PNG, w); err != nil {
			return goerr.Wrap(err, "failed to render bar chart")
		}

	default:
		return goerr.Wrap(model.ErrUnknownChartKind, "cannot rasterize scene", goerr.V("kind", scene.Kind))
	}

	return nil
}
