package usecase

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// ChangeSource names the widget a selection change came from
type ChangeSource string

const (
	SourceCountry ChangeSource = "country"
	SourceYear    ChangeSource = "year"
	SourceChart   ChangeSource = "chart"
)

// yearRelevance tells whether the year selection affects a chart kind
var yearRelevance = map[types.ChartKind]bool{
	types.ChartKindLine: false,
	types.ChartKindBar:  true,
}

// Selection reads the three selection widgets and decides which changes need a redraw
type Selection struct {
	country interfaces.SelectionWidget
	year    interfaces.SelectionWidget
	chart   interfaces.SelectionWidget
}

// NewSelection creates a Selection over the widgets
func NewSelection(country, year, chart interfaces.SelectionWidget) *Selection {
	return &Selection{country: country, year: year, chart: chart}
}

// Snapshot reads the current selection. Year text that is not a number yields year 0,
// which matches no records.
func (s *Selection) Snapshot() (model.Selection, error) {
	kind, err := types.ParseChartKind(s.chart.Current())
	if err != nil {
		return model.Selection{}, goerr.Wrap(model.ErrUnknownChartKind, "invalid chart selection",
			goerr.V("text", s.chart.Current()))
	}

	year, _ := strconv.Atoi(strings.TrimSpace(s.year.Current()))
	return model.Selection{
		Country:   strings.TrimSpace(s.country.Current()),
		Year:      year,
		ChartKind: kind,
	}, nil
}

// ShouldRedraw reports whether a change from source requires a redraw.
// Country and chart changes always do. Year changes only matter for chart kinds that use the year.
func (s *Selection) ShouldRedraw(source ChangeSource) (bool, error) {
	switch source {
	case SourceCountry, SourceChart:
		return true, nil
	case SourceYear:
		kind, err := types.ParseChartKind(s.chart.Current())
		if err != nil {
			return false, goerr.Wrap(model.ErrUnknownChartKind, "invalid chart selection",
				goerr.V("text", s.chart.Current()))
		}
		return yearRelevance[kind], nil
	default:
		return false, goerr.New("unknown change source", goerr.V("source", source))
	}
}

// Subscribe calls fn with the source of every widget change
func (s *Selection) Subscribe(fn func(ChangeSource)) func() {
	cancels := []func(){
		s.country.Subscribe(func(string) { fn(SourceCountry) }),
		s.year.Subscribe(func(string) { fn(SourceYear) }),
		s.chart.Subscribe(func(string) { fn(SourceChart) }),
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
