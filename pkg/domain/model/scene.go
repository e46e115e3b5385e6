package model

import (
	"math"

	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// Margins around the drawing area in pixels
type Margins struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

// DefaultMargins returns the standard chart margins
func DefaultMargins() Margins {
	return Margins{Top: 20, Right: 20, Bottom: 20, Left: 50}
}

// Dimensions is the usable drawing area after margins
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both sides are finite and positive
func (d Dimensions) Valid() bool {
	return isUsable(d.Width) && isUsable(d.Height)
}

func isUsable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// GradientStop is one color stop of a linear gradient
type GradientStop struct {
	Offset string `json:"offset"`
	Color  string `json:"color"`
}

// Gradient is a horizontal linear gradient used to paint lines and bars
type Gradient struct {
	ID    string         `json:"id"`
	Stops []GradientStop `json:"stops"`
}

// Tick is one axis tick at a pixel position
type Tick struct {
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// Axis holds the ticks of one axis
type Axis struct {
	Ticks []Tick `json:"ticks"`
}

// AxisLabel is a text label attached to an axis
type AxisLabel struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Point is a path vertex in drawing-area coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bar is a rectangle in drawing-area coordinates
type Bar struct {
	Key    string  `json:"key"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Value  int     `json:"value"`
}

// DataPoint is a raw (label, value) pair behind a scene, used for exports
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Scene is a fully laid-out chart ready to be drawn on a canvas
type Scene struct {
	ID          types.RenderID  `json:"id"`
	Kind        types.ChartKind `json:"kind"`
	Margins     Margins         `json:"margins"`
	Size        Dimensions      `json:"size"`
	Gradient    Gradient        `json:"gradient"`
	StrokeWidth float64         `json:"stroke_width"`
	XAxis       Axis            `json:"x_axis"`
	YAxis       Axis            `json:"y_axis"`
	XLabel      AxisLabel       `json:"x_label"`
	YLabel      AxisLabel       `json:"y_label"`
	Path        []Point         `json:"path,omitempty"`
	Bars        []Bar           `json:"bars,omitempty"`
	Data        []DataPoint     `json:"data"`
}

// OuterWidth returns the full canvas width including margins
func (s *Scene) OuterWidth() float64 {
	return s.Size.Width + s.Margins.Left + s.Margins.Right
}

// OuterHeight returns the full canvas height including margins
func (s *Scene) OuterHeight() float64 {
	return s.Size.Height + s.Margins.Top + s.Margins.Bottom
}

// SlotValue is the heading and text shown in one display slot
type SlotValue struct {
	Heading string `json:"heading"`
	Value   string `json:"value"`
}

// Summary is the four display slot values for one render
type Summary struct {
	Total   SlotValue `json:"total"`
	Average SlotValue `json:"average"`
	GroupA  SlotValue `json:"group_a"`
	GroupB  SlotValue `json:"group_b"`
}

// Slot returns the value for the given slot ID
func (s Summary) Slot(id types.SlotID) SlotValue {
	switch id {
	case types.SlotTotal:
		return s.Total
	case types.SlotAverage:
		return s.Average
	case types.SlotGroupA:
		return s.GroupA
	case types.SlotGroupB:
		return s.GroupB
	default:
		return SlotValue{}
	}
}
