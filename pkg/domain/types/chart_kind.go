package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ChartKind represents the chart variant shown on the dashboard
type ChartKind string

const (
	ChartKindLine ChartKind = "line"
	ChartKindBar  ChartKind = "bar"
)

// String returns the string representation of the chart kind
func (k ChartKind) String() string {
	return string(k)
}

// IsValid checks if the chart kind is valid
func (k ChartKind) IsValid() bool {
	switch k {
	case ChartKindLine, ChartKindBar:
		return true
	default:
		return false
	}
}

// Label returns the menu text used by the chart-type widget
func (k ChartKind) Label() string {
	switch k {
	case ChartKindLine:
		return "Line Chart"
	case ChartKindBar:
		return "Bar Chart"
	default:
		return string(k)
	}
}

// ParseChartKind converts widget text such as "Bar Chart" or "line" to a ChartKind
func ParseChartKind(text string) (ChartKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	switch normalized {
	case "line chart", "line":
		return ChartKindLine, nil
	case "bar chart", "bar":
		return ChartKindBar, nil
	default:
		return "", goerr.New("unknown chart kind", goerr.V("text", text))
	}
}

// Sex represents the sex column of a record
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// String returns the string representation
func (s Sex) String() string {
	return string(s)
}

// IsValid checks if the sex value is one of the known values
func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

// ParseSex converts dataset text to Sex. Unknown text yields an empty Sex.
func ParseSex(text string) Sex {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "male":
		return SexMale
	case "female":
		return SexFemale
	default:
		return ""
	}
}

// LayoutState represents the state of the responsive layout controller
type LayoutState string

const (
	LayoutIdle          LayoutState = "idle"
	LayoutPendingRedraw LayoutState = "pending_redraw"
)

// String returns the string representation
func (s LayoutState) String() string {
	return string(s)
}
