package usecase

import (
	"context"

	"github.com/secmon-lab/suistat/pkg/domain/model"
)

// DashboardUseCase draws charts for selections
type DashboardUseCase interface {
	Compose(ctx context.Context, sel model.Selection, dims model.Dimensions) (*model.Scene, model.Summary, error)
	Redraw(ctx context.Context, sel model.Selection, dims model.Dimensions) error
	Series(ctx context.Context, sel model.Selection) (*SeriesView, error)
	Records(ctx context.Context) ([]*model.Record, error)
	Config() *model.DashboardConfig
}

// OptionsUseCase lists selectable values
type OptionsUseCase interface {
	Countries(ctx context.Context) ([]string, error)
	Years(ctx context.Context, country string) ([]int, error)
}

// StatusProvider reports the controller state
type StatusProvider interface {
	Selection() (model.Selection, error)
	Status() Status
	Flush(ctx context.Context) error
}

var (
	_ DashboardUseCase = (*Dashboard)(nil)
	_ OptionsUseCase   = (*Options)(nil)
	_ StatusProvider   = (*Controller)(nil)
)
