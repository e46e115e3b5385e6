package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"gopkg.in/yaml.v3"
)

func TestDashboardConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		gt.NoError(t, model.DefaultDashboardConfig().Validate())
	})

	testCases := []struct {
		name   string
		mutate func(c *model.DashboardConfig)
	}{
		{"negative margin", func(c *model.DashboardConfig) { c.Margins.Left = -1 }},
		{"zero debounce", func(c *model.DashboardConfig) { c.Debounce = 0 }},
		{"zero min width", func(c *model.DashboardConfig) { c.MinWidth = 0 }},
		{"zero small screen ticks", func(c *model.DashboardConfig) { c.SmallScreenTicks = 0 }},
		{"negative headroom", func(c *model.DashboardConfig) { c.Headroom = -0.5 }},
		{"bar padding of one", func(c *model.DashboardConfig) { c.BarPadding = 1 }},
		{"zero stroke width", func(c *model.DashboardConfig) { c.StrokeWidth = 0 }},
		{"bad start color", func(c *model.DashboardConfig) { c.Gradient.Start = "cyan" }},
		{"bad end color", func(c *model.DashboardConfig) { c.Gradient.End = "#12345" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := model.DefaultDashboardConfig()
			tc.mutate(cfg)
			gt.Error(t, cfg.Validate())
		})
	}

	t.Run("unknown default chart", func(t *testing.T) {
		cfg := model.DefaultDashboardConfig()
		cfg.DefaultChart = types.ChartKind("pie")
		err := cfg.Validate()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, model.ErrUnknownChartKind))
	})
}

func TestDashboardConfigYAML(t *testing.T) {
	data := []byte(`
margins:
  top: 10
  right: 10
  bottom: 10
  left: 40
debounce: 120ms
headroom: 1.2
gradient:
  start: "#ffffff"
  end: "#000"
default_chart: bar
`)
	cfg := model.DefaultDashboardConfig()
	gt.NoError(t, yaml.Unmarshal(data, cfg))
	gt.NoError(t, cfg.Validate())

	gt.Equal(t, 40.0, cfg.Margins.Left)
	gt.Equal(t, 120*time.Millisecond, cfg.Debounce)
	gt.Equal(t, 1.2, cfg.Headroom)
	gt.Equal(t, types.ChartKindBar, cfg.DefaultChart)
	// untouched fields keep their defaults
	gt.Equal(t, 0.1, cfg.BarPadding)
	gt.Equal(t, "Lowest Suicide Age Group", cfg.Headings.Lowest)
}

func TestDashboardConfigLayout(t *testing.T) {
	cfg := model.DefaultDashboardConfig()

	t.Run("computes dimensions from container width", func(t *testing.T) {
		dims, ok := cfg.Layout(800)
		gt.True(t, ok)
		gt.Equal(t, 730.0, dims.Width)
		gt.Equal(t, 360.0, dims.Height)
		gt.True(t, dims.Valid())
	})

	t.Run("clamps to minimum size", func(t *testing.T) {
		dims, ok := cfg.Layout(120)
		gt.True(t, ok)
		gt.Equal(t, 100.0, dims.Width)
		gt.Equal(t, 100.0, dims.Height)
	})

	t.Run("ignores unusable widths", func(t *testing.T) {
		for _, w := range []float64{0, 5, 10, -20, math.NaN(), math.Inf(1)} {
			_, ok := cfg.Layout(w)
			gt.False(t, ok)
		}
	})

	t.Run("tick count depends on width", func(t *testing.T) {
		gt.Equal(t, 4, cfg.TickCount(499))
		gt.Equal(t, 10, cfg.TickCount(500))
	})
}

func TestDimensionsValid(t *testing.T) {
	gt.True(t, model.Dimensions{Width: 1, Height: 1}.Valid())
	gt.False(t, model.Dimensions{Width: 0, Height: 1}.Valid())
	gt.False(t, model.Dimensions{Width: 1, Height: math.NaN()}.Valid())
	gt.False(t, model.Dimensions{}.Valid())
}

func TestSummarySlot(t *testing.T) {
	summary := model.Summary{
		Total:   model.SlotValue{Heading: "Total Suicides", Value: "10"},
		Average: model.SlotValue{Heading: "Average Suicide Rate", Value: "2.5"},
		GroupA:  model.SlotValue{Heading: "Highest Suicide Age Group", Value: "15"},
		GroupB:  model.SlotValue{Heading: "Lowest Suicide Age Group", Value: "25"},
	}
	gt.Equal(t, "10", summary.Slot(types.SlotTotal).Value)
	gt.Equal(t, "15", summary.Slot(types.SlotGroupA).Value)
	gt.Equal(t, "25", summary.Slot(types.SlotGroupB).Value)
	gt.Equal(t, model.SlotValue{}, summary.Slot(types.SlotID("none")))
}

func TestSelectionYearVisible(t *testing.T) {
	gt.True(t, model.Selection{ChartKind: types.ChartKindBar}.YearVisible())
	gt.False(t, model.Selection{ChartKind: types.ChartKindLine}.YearVisible())
}
