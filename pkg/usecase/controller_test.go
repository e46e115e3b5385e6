package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/widget"
)

func flush(t *testing.T, ctrl interface{ Flush(context.Context) error }) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gt.NoError(t, ctrl.Flush(ctx))
}

func TestControllerInitialDraw(t *testing.T) {
	f := newFixture()
	ctrl, stop := f.start(context.Background())
	defer stop()
	flush(t, ctrl)

	status := ctrl.Status()
	gt.Equal(t, 1, status.Redraws)
	gt.Equal(t, types.LayoutIdle, status.Layout)
	gt.Equal(t, model.Dimensions{Width: 730, Height: 360}, status.Dimensions)
	gt.Equal(t, types.ChartKindLine, f.board.Snapshot().Scene.Kind)
	gt.Equal(t, "67", slotValues(f)[types.SlotTotal])
}

func TestControllerSelectionGating(t *testing.T) {
	t.Run("year change under line chart does nothing", func(t *testing.T) {
		f := newFixture()
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)
		before := f.board.Snapshot()

		f.year.Set("1988")
		flush(t, ctrl)

		after := f.board.Snapshot()
		gt.Equal(t, before.Version, after.Version)
		gt.Equal(t, before.Slots, after.Slots)
		gt.Equal(t, 1, ctrl.Status().Redraws)
	})

	t.Run("year change under bar chart redraws", func(t *testing.T) {
		f := newFixture()
		f.chart.Set("Bar Chart")
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)
		gt.Equal(t, "51", slotValues(f)[types.SlotTotal])

		f.year.Set("1988")
		flush(t, ctrl)
		gt.Equal(t, "16", slotValues(f)[types.SlotTotal])
		gt.Equal(t, 2, ctrl.Status().Redraws)
	})

	t.Run("chart change redraws with other kind", func(t *testing.T) {
		f := newFixture()
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)

		f.chart.Set("Bar Chart")
		flush(t, ctrl)
		gt.Equal(t, types.ChartKindBar, f.board.Snapshot().Scene.Kind)
		gt.Equal(t, "17.00", slotValues(f)[types.SlotAverage])
	})

	t.Run("country change redraws", func(t *testing.T) {
		f := newFixture()
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)

		f.country.Set("Argentina")
		flush(t, ctrl)
		gt.Equal(t, "108", slotValues(f)[types.SlotTotal])
	})

	t.Run("unknown chart text keeps previous drawing", func(t *testing.T) {
		f := newFixture()
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)
		before := f.board.Snapshot().Version

		f.chart.Set("Pie Chart")
		flush(t, ctrl)
		gt.Equal(t, before, f.board.Snapshot().Version)
		gt.NotEqual(t, "", ctrl.Status().LastError)
	})
}

func TestControllerResize(t *testing.T) {
	t.Run("burst of resizes gives one redraw after debounce", func(t *testing.T) {
		f := newFixture()
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)

		f.container.Set(700)
		f.container.Set(650)
		f.container.Set(600)
		flush(t, ctrl)

		status := ctrl.Status()
		gt.Equal(t, types.LayoutPendingRedraw, status.Layout)
		gt.True(t, f.board.Snapshot().Blank())
		gt.Equal(t, 1, status.Redraws)

		gt.Equal(t, 1, f.scheduler.fireAll())
		flush(t, ctrl)

		status = ctrl.Status()
		gt.Equal(t, types.LayoutIdle, status.Layout)
		gt.Equal(t, 2, status.Redraws)
		gt.Equal(t, model.Dimensions{Width: 530, Height: 260}, status.Dimensions)
		gt.Equal(t, 530.0, f.board.Snapshot().Scene.Size.Width)
	})

	t.Run("selection change while pending waits for the timer", func(t *testing.T) {
		f := newFixture()
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)

		f.container.Set(600)
		f.country.Set("Argentina")
		flush(t, ctrl)
		gt.True(t, f.board.Snapshot().Blank())

		f.scheduler.fireAll()
		flush(t, ctrl)
		gt.Equal(t, "108", slotValues(f)[types.SlotTotal])
	})

	t.Run("unusable widths are ignored", func(t *testing.T) {
		f := newFixture()
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)

		f.container.Set(5)
		flush(t, ctrl)
		gt.False(t, f.board.Snapshot().Blank())
		gt.Equal(t, types.LayoutIdle, ctrl.Status().Layout)
		gt.Equal(t, 0, f.scheduler.armed())
	})

	t.Run("first draw waits for a usable width", func(t *testing.T) {
		f := newFixture()
		f.container = widget.New(0.0)
		ctrl, stop := f.start(context.Background())
		defer stop()
		flush(t, ctrl)
		gt.True(t, f.board.Snapshot().Blank())
		gt.Equal(t, 0, ctrl.Status().Redraws)

		f.container.Set(800)
		f.scheduler.fireAll()
		flush(t, ctrl)
		gt.False(t, f.board.Snapshot().Blank())
		gt.Equal(t, 1, ctrl.Status().Redraws)
	})
}

func TestControllerFlushAfterStop(t *testing.T) {
	f := newFixture()
	ctrl, stop := f.start(context.Background())
	flush(t, ctrl)
	stop()

	gt.Error(t, ctrl.Flush(context.Background()))
}
