// Package chart lays out line and bar charts as scenes and computes the summary slot values.
package chart

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

const (
	labelOffset  = 35
	yAxisLabel   = "Suicides No."
	lineXLabel   = "Years"
	barXLabel    = "Age Groups"
	lineGradient = "line-gradient"
	barGradient  = "bar-gradient"
)

// baseScene fills the parts shared by both chart kinds
func baseScene(cfg *model.DashboardConfig, kind types.ChartKind, dims model.Dimensions, gradientID, xLabel string) *model.Scene {
	return &model.Scene{
		Kind:    kind,
		Margins: cfg.Margins,
		Size:    dims,
		Gradient: model.Gradient{
			ID: gradientID,
			Stops: []model.GradientStop{
				{Offset: "0%", Color: cfg.Gradient.Start},
				{Offset: "100%", Color: cfg.Gradient.End},
			},
		},
		StrokeWidth: cfg.StrokeWidth,
		XLabel: model.AxisLabel{
			Text: xLabel,
			X:    dims.Width / 2,
			Y:    dims.Height + labelOffset,
		},
		YLabel: model.AxisLabel{
			Text:     yAxisLabel,
			X:        -dims.Height / 2,
			Y:        -labelOffset,
			Rotation: -90,
		},
	}
}

func checkDimensions(dims model.Dimensions) error {
	if !dims.Valid() {
		return goerr.Wrap(model.ErrLayoutNotReady, "invalid chart dimensions",
			goerr.V("width", dims.Width),
			goerr.V("height", dims.Height))
	}
	return nil
}

// valueAxis builds y ticks for a linear scale
func valueAxis(scale linearScale, count int) model.Axis {
	var axis model.Axis
	for _, v := range scale.Ticks(count) {
		axis.Ticks = append(axis.Ticks, model.Tick{Position: scale.Map(v), Label: formatSI(v)})
	}
	return axis
}
