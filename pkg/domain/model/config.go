package model

import (
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// SlotHeadings holds the display slot headings for both chart kinds
type SlotHeadings struct {
	Total      string `yaml:"total"`
	Average    string `yaml:"average"`
	MaleRate   string `yaml:"male_rate"`
	FemaleRate string `yaml:"female_rate"`
	Highest    string `yaml:"highest"`
	Lowest     string `yaml:"lowest"`
}

// GradientConfig holds the two stops of the chart gradient
type GradientConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DashboardConfig represents the chart layout and presentation configuration
type DashboardConfig struct {
	Margins           Margins         `yaml:"margins"`
	Debounce          time.Duration   `yaml:"debounce"`
	MinContainerWidth float64         `yaml:"min_container_width"` // widths at or below are ignored
	MinWidth          float64         `yaml:"min_width"`
	MinHeight         float64         `yaml:"min_height"`
	SmallScreenWidth  float64         `yaml:"small_screen_width"`
	SmallScreenTicks  int             `yaml:"small_screen_ticks"`
	DefaultTicks      int             `yaml:"default_ticks"`
	Headroom          float64         `yaml:"headroom"` // y domain upper bound multiplier
	BarPadding        float64         `yaml:"bar_padding"`
	StrokeWidth       float64         `yaml:"stroke_width"`
	Gradient          GradientConfig  `yaml:"gradient"`
	Headings          SlotHeadings    `yaml:"headings"`
	DefaultChart      types.ChartKind `yaml:"default_chart"`
}

// DefaultDashboardConfig returns the built-in dashboard configuration
func DefaultDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Margins:           DefaultMargins(),
		Debounce:          50 * time.Millisecond,
		MinContainerWidth: 10,
		MinWidth:          100,
		MinHeight:         100,
		SmallScreenWidth:  500,
		SmallScreenTicks:  4,
		DefaultTicks:      10,
		Headroom:          1.1,
		BarPadding:        0.1,
		StrokeWidth:       2,
		Gradient: GradientConfig{
			Start: "#67e8f9",
			End:   "#06b6d4",
		},
		Headings: SlotHeadings{
			Total:      "Total Suicides",
			Average:    "Average Suicide Rate",
			MaleRate:   "Average Suicide Rate in Males",
			FemaleRate: "Average Suicide Rate in Females",
			Highest:    "Highest Suicide Age Group",
			Lowest:     "Lowest Suicide Age Group",
		},
		DefaultChart: types.ChartKindLine,
	}
}

// Validate validates the dashboard configuration
func (c *DashboardConfig) Validate() error {
	margins := map[string]float64{
		"top":    c.Margins.Top,
		"right":  c.Margins.Right,
		"bottom": c.Margins.Bottom,
		"left":   c.Margins.Left,
	}
	for side, v := range margins {
		if v < 0 {
			return goerr.New("margin must not be negative",
				goerr.V("side", side),
				goerr.V("value", v))
		}
	}

	if c.Debounce <= 0 {
		return goerr.New("debounce must be positive", goerr.V("debounce", c.Debounce))
	}
	if c.MinWidth <= 0 || c.MinHeight <= 0 {
		return goerr.New("minimum chart size must be positive",
			goerr.V("min_width", c.MinWidth),
			goerr.V("min_height", c.MinHeight))
	}
	if c.SmallScreenTicks <= 0 || c.DefaultTicks <= 0 {
		return goerr.New("tick counts must be positive",
			goerr.V("small_screen_ticks", c.SmallScreenTicks),
			goerr.V("default_ticks", c.DefaultTicks))
	}
	if c.Headroom <= 0 {
		return goerr.New("headroom must be positive", goerr.V("headroom", c.Headroom))
	}
	if c.BarPadding < 0 || c.BarPadding >= 1 {
		return goerr.New("bar padding must be in [0, 1)", goerr.V("bar_padding", c.BarPadding))
	}
	if c.StrokeWidth <= 0 {
		return goerr.New("stroke width must be positive", goerr.V("stroke_width", c.StrokeWidth))
	}

	for name, color := range map[string]string{"start": c.Gradient.Start, "end": c.Gradient.End} {
		if !hexColorPattern.MatchString(color) {
			return goerr.New("invalid gradient color",
				goerr.V("stop", name),
				goerr.V("color", color))
		}
	}

	if c.DefaultChart != "" && !c.DefaultChart.IsValid() {
		return goerr.Wrap(ErrUnknownChartKind, "invalid default chart",
			goerr.V("default_chart", c.DefaultChart))
	}

	return nil
}

// SmallScreen reports whether the drawing width should use reduced tick counts
func (c *DashboardConfig) SmallScreen(width float64) bool {
	return width < c.SmallScreenWidth
}

// TickCount returns the requested tick count for the given drawing width
func (c *DashboardConfig) TickCount(width float64) int {
	if c.SmallScreen(width) {
		return c.SmallScreenTicks
	}
	return c.DefaultTicks
}

// Layout converts a container width into drawing dimensions.
// ok is false when the width is not usable yet.
func (c *DashboardConfig) Layout(containerWidth float64) (Dimensions, bool) {
	if !isUsable(containerWidth) || containerWidth <= c.MinContainerWidth {
		return Dimensions{}, false
	}

	m := c.Margins
	width := containerWidth - m.Left - m.Right
	if width < c.MinWidth {
		width = c.MinWidth
	}
	height := containerWidth/2 - m.Top - m.Bottom
	if height < c.MinHeight {
		height = c.MinHeight
	}
	return Dimensions{Width: width, Height: height}, true
}
