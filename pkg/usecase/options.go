package usecase

import (
	"context"
	"strconv"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/service/aggregate"
)

// Options lists the values the selection widgets can take
type Options struct {
	dashboard *Dashboard
}

// NewOptions creates Options backed by the dashboard dataset
func NewOptions(dashboard *Dashboard) *Options {
	return &Options{dashboard: dashboard}
}

// Countries returns countries in dataset order. The first one is the default selection.
func (o *Options) Countries(ctx context.Context) ([]string, error) {
	records, err := o.dashboard.Records(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Countries(records), nil
}

// Years returns the years recorded for a country in ascending order
func (o *Options) Years(ctx context.Context, country string) ([]int, error) {
	records, err := o.dashboard.Records(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Years(records, country), nil
}

// Init selects the first country and its first year when the widgets are empty
func (o *Options) Init(ctx context.Context, country, year interfaces.SelectionWidget) error {
	if country.Current() == "" {
		countries, err := o.Countries(ctx)
		if err != nil {
			return err
		}
		if len(countries) > 0 {
			country.Set(countries[0])
		}
	}
	if year.Current() == "" {
		return o.resetYear(ctx, country.Current(), year)
	}
	return nil
}

// Bind keeps the year widget pointing at a year the selected country has.
// On every country change the year is reset to the first year of that country.
func (o *Options) Bind(ctx context.Context, country, year interfaces.SelectionWidget) func() {
	return country.Subscribe(func(value string) {
		if err := o.resetYear(ctx, value, year); err != nil {
			ctxlog.From(ctx).Warn("Failed to reset year selection", "error", err, "country", value)
		}
	})
}

func (o *Options) resetYear(ctx context.Context, country string, year interfaces.SelectionWidget) error {
	years, err := o.Years(ctx, country)
	if err != nil {
		return err
	}
	if len(years) == 0 {
		return nil
	}
	year.Set(strconv.Itoa(years[0]))
	return nil
}
