package chart_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/chart"
)

func near(t *testing.T, expected, actual float64) {
	t.Helper()
	if math.Abs(expected-actual) > 1e-6 {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

func tickLabels(axis model.Axis) []string {
	labels := make([]string, len(axis.Ticks))
	for i, tick := range axis.Ticks {
		labels[i] = tick.Label
	}
	return labels
}

var wide = model.Dimensions{Width: 730, Height: 360}

func TestLineRenderer(t *testing.T) {
	cfg := model.DefaultDashboardConfig()
	r := chart.NewLineRenderer(cfg)
	series := []model.YearTotal{
		{Year: 2010, Total: 8, Male: 5, Female: 3},
		{Year: 2011, Total: 2, Male: 2, Female: 0},
	}

	t.Run("lays out path and axes", func(t *testing.T) {
		scene, _, err := r.Render(series, wide)
		gt.NoError(t, err)
		gt.Equal(t, types.ChartKindLine, scene.Kind)
		gt.Equal(t, 2, len(scene.Path))
		near(t, 0, scene.Path[0].X)
		near(t, 730, scene.Path[1].X)
		near(t, 360-8/8.8*360, scene.Path[0].Y)
		near(t, 360-2/8.8*360, scene.Path[1].Y)

		gt.Equal(t, []string{"2010", "2011"}, tickLabels(scene.XAxis))
		gt.Equal(t, []string{"0.0", "1.0", "2.0", "3.0", "4.0", "5.0", "6.0", "7.0", "8.0"}, tickLabels(scene.YAxis))
		near(t, 360, scene.YAxis.Ticks[0].Position)
	})

	t.Run("uses gradient and labels", func(t *testing.T) {
		scene, _, err := r.Render(series, wide)
		gt.NoError(t, err)
		gt.Equal(t, "line-gradient", scene.Gradient.ID)
		gt.Equal(t, []model.GradientStop{
			{Offset: "0%", Color: "#67e8f9"},
			{Offset: "100%", Color: "#06b6d4"},
		}, scene.Gradient.Stops)
		gt.Equal(t, 2.0, scene.StrokeWidth)
		gt.Equal(t, model.AxisLabel{Text: "Years", X: 365, Y: 395}, scene.XLabel)
		gt.Equal(t, model.AxisLabel{Text: "Suicides No.", X: -180, Y: -35, Rotation: -90}, scene.YLabel)
		gt.Equal(t, 800.0, scene.OuterWidth())
		gt.Equal(t, 400.0, scene.OuterHeight())
	})

	t.Run("writes summary slots", func(t *testing.T) {
		_, summary, err := r.Render(series, wide)
		gt.NoError(t, err)
		gt.Equal(t, model.SlotValue{Heading: "Total Suicides", Value: "10"}, summary.Total)
		gt.Equal(t, "0.42", summary.Average.Value)
		gt.Equal(t, model.SlotValue{Heading: "Average Suicide Rate in Males", Value: "0.29"}, summary.GroupA)
		gt.Equal(t, model.SlotValue{Heading: "Average Suicide Rate in Females", Value: "0.13"}, summary.GroupB)
	})

	t.Run("reduces ticks on small screens", func(t *testing.T) {
		long := make([]model.YearTotal, 0, 16)
		for y := 2000; y <= 2015; y++ {
			long = append(long, model.YearTotal{Year: y, Total: 10})
		}

		scene, _, err := r.Render(long, model.Dimensions{Width: 400, Height: 160})
		gt.NoError(t, err)
		gt.Equal(t, []string{"2000", "2005", "2010", "2015"}, tickLabels(scene.XAxis))

		scene, _, err = r.Render(long, wide)
		gt.NoError(t, err)
		gt.Equal(t, 8, len(scene.XAxis.Ticks))
	})

	t.Run("single year is centered", func(t *testing.T) {
		scene, _, err := r.Render(series[:1], wide)
		gt.NoError(t, err)
		near(t, 365, scene.Path[0].X)
	})

	t.Run("empty series", func(t *testing.T) {
		_, _, err := r.Render(nil, wide)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrEmptySelection))
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		_, _, err := r.Render(series, model.Dimensions{Width: math.NaN(), Height: 100})
		gt.True(t, errors.Is(err, model.ErrLayoutNotReady))
	})

	t.Run("is idempotent", func(t *testing.T) {
		s1, sum1, err := r.Render(series, wide)
		gt.NoError(t, err)
		s2, sum2, err := r.Render(series, wide)
		gt.NoError(t, err)
		gt.Equal(t, *s1, *s2)
		gt.Equal(t, sum1, sum2)
	})
}

func TestBarRenderer(t *testing.T) {
	cfg := model.DefaultDashboardConfig()
	r := chart.NewBarRenderer(cfg)
	series := &model.BracketSeries{
		Brackets:   []model.BracketTotal{{Key: "15", Total: 8}, {Key: "25", Total: 0}},
		Lowest:     model.BracketTotal{Key: "25", Total: 0},
		Highest:    model.BracketTotal{Key: "15", Total: 8},
		GrandTotal: 8,
		Average:    4,
	}

	t.Run("lays out bands", func(t *testing.T) {
		scene, _, err := r.Render(series, wide)
		gt.NoError(t, err)
		gt.Equal(t, types.ChartKindBar, scene.Kind)
		gt.Equal(t, 2, len(scene.Bars))

		step := 730 / 2.1
		near(t, (730-step*1.9)/2, scene.Bars[0].X)
		near(t, (730-step*1.9)/2+step, scene.Bars[1].X)
		near(t, step*0.9, scene.Bars[0].Width)
		near(t, 8/8.8*360, scene.Bars[0].Height)
		near(t, 0, scene.Bars[1].Height)
		near(t, 360, scene.Bars[1].Y)

		gt.Equal(t, []string{"15", "25"}, tickLabels(scene.XAxis))
		gt.Equal(t, "bar-gradient", scene.Gradient.ID)
		gt.Equal(t, "Age Groups", scene.XLabel.Text)
	})

	t.Run("writes summary slots", func(t *testing.T) {
		_, summary, err := r.Render(series, wide)
		gt.NoError(t, err)
		gt.Equal(t, "8", summary.Total.Value)
		gt.Equal(t, "4.00", summary.Average.Value)
		gt.Equal(t, model.SlotValue{Heading: "Highest Suicide Age Group", Value: "15"}, summary.GroupA)
		gt.Equal(t, model.SlotValue{Heading: "Lowest Suicide Age Group", Value: "25"}, summary.GroupB)
	})

	t.Run("reduces only value ticks on small screens", func(t *testing.T) {
		scene, _, err := r.Render(series, model.Dimensions{Width: 400, Height: 160})
		gt.NoError(t, err)
		gt.Equal(t, []string{"0.0", "2.0", "4.0", "6.0", "8.0"}, tickLabels(scene.YAxis))
		gt.Equal(t, 2, len(scene.XAxis.Ticks))
	})

	t.Run("all zero values stay on the baseline", func(t *testing.T) {
		zero := &model.BracketSeries{Brackets: []model.BracketTotal{{Key: "5"}, {Key: "15"}}}
		scene, _, err := r.Render(zero, wide)
		gt.NoError(t, err)
		for _, b := range scene.Bars {
			near(t, 360, b.Y)
			near(t, 0, b.Height)
		}
		gt.Equal(t, []string{"0.0"}, tickLabels(scene.YAxis))
	})

	t.Run("empty series", func(t *testing.T) {
		_, _, err := r.Render(&model.BracketSeries{}, wide)
		gt.True(t, errors.Is(err, model.ErrEmptySelection))
	})
}

func TestFormatSI(t *testing.T) {
	testCases := map[float64]string{
		0:       "0.0",
		8:       "8.0",
		42:      "42",
		500:     "500",
		2000:    "2.0k",
		1500:    "1.5k",
		15000:   "15k",
		1234567: "1.2M",
		0.5:     "500m",
	}
	for v, expected := range testCases {
		gt.Equal(t, expected, chart.FormatSI(v))
	}
}

func TestFormatRate(t *testing.T) {
	gt.Equal(t, "2.5", chart.FormatRate(2.5))
	gt.Equal(t, "0.42", chart.FormatRate(5.0/12))
	gt.Equal(t, "3", chart.FormatRate(3.001))
	gt.Equal(t, "3.00", chart.FormatFixed2(3))
}

func TestTicks(t *testing.T) {
	gt.Equal(t, []float64{0, 2, 4, 6, 8, 10}, chart.Ticks(0, 10, 5))
	gt.Equal(t, []float64{0, 20000, 40000, 60000}, chart.Ticks(0, 66000, 4))
	gt.Equal(t, []float64{5}, chart.Ticks(5, 5, 10))
}

func TestSVG(t *testing.T) {
	cfg := model.DefaultDashboardConfig()

	t.Run("line", func(t *testing.T) {
		scene, _, err := chart.NewLineRenderer(cfg).Render([]model.YearTotal{
			{Year: 2010, Total: 8}, {Year: 2011, Total: 2},
		}, wide)
		gt.NoError(t, err)

		svg := chart.SVG(scene)
		gt.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="400"`))
		gt.S(t, svg).Contains(`<linearGradient id="line-gradient" x1="0%" y1="0%" x2="100%" y2="0%">`)
		gt.S(t, svg).Contains(`<stop offset="0%" stop-color="#67e8f9"/>`)
		gt.S(t, svg).Contains(`stroke="url(#line-gradient)" stroke-width="2" d="M0,`)
		gt.S(t, svg).Contains(`transform="rotate(-90)"`)
		gt.S(t, svg).Contains(`>Years</text>`)
		gt.S(t, svg).Contains(`<g transform="translate(50,0)">`)
		gt.S(t, svg).NotContains(`class="bar"`)
	})

	t.Run("bar", func(t *testing.T) {
		scene, _, err := chart.NewBarRenderer(cfg).Render(&model.BracketSeries{
			Brackets: []model.BracketTotal{{Key: "15", Total: 3}, {Key: "<5", Total: 1}, {Key: "75", Total: 2}},
		}, wide)
		gt.NoError(t, err)

		svg := chart.SVG(scene)
		gt.Equal(t, 3, strings.Count(svg, `<rect class="bar"`))
		gt.S(t, svg).Contains(`fill="url(#bar-gradient)"`)
		gt.S(t, svg).Contains(`&lt;5`)
		gt.S(t, svg).NotContains(`<path class="line"`)
	})
}

func TestPNG(t *testing.T) {
	cfg := model.DefaultDashboardConfig()

	t.Run("line", func(t *testing.T) {
		scene, _, err := chart.NewLineRenderer(cfg).Render([]model.YearTotal{
			{Year: 2010, Total: 8}, {Year: 2011, Total: 2}, {Year: 2012, Total: 5},
		}, wide)
		gt.NoError(t, err)

		var buf bytes.Buffer
		gt.NoError(t, chart.PNG(scene, cfg.Headroom, &buf))
		gt.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	})

	t.Run("single year line", func(t *testing.T) {
		scene, _, err := chart.NewLineRenderer(cfg).Render([]model.YearTotal{{Year: 2010, Total: 8}}, wide)
		gt.NoError(t, err)

		var buf bytes.Buffer
		gt.NoError(t, chart.PNG(scene, cfg.Headroom, &buf))
	})

	t.Run("bar", func(t *testing.T) {
		scene, _, err := chart.NewBarRenderer(cfg).Render(&model.BracketSeries{
			Brackets: []model.BracketTotal{{Key: "15", Total: 3}, {Key: "25", Total: 1}},
		}, wide)
		gt.NoError(t, err)

		var buf bytes.Buffer
		gt.NoError(t, chart.PNG(scene, cfg.Headroom, &buf))
		gt.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	})
}
