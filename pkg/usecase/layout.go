package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// Timer is a pending scheduled call
type Timer interface {
	Stop() bool
}

// Scheduler arms timers. SystemScheduler uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemScheduler returns a Scheduler backed by the runtime timers
func SystemScheduler() Scheduler {
	return systemScheduler{}
}

// Layout debounces container size notifications into redraws. It has two states:
// Idle and PendingRedraw. It is not safe for concurrent use and is driven by the Controller loop.
type Layout struct {
	cfg       *model.DashboardConfig
	canvas    interfaces.Canvas
	scheduler Scheduler

	state      types.LayoutState
	dims       model.Dimensions
	timer      Timer
	generation uint64
}

// NewLayout creates an idle layout controller
func NewLayout(cfg *model.DashboardConfig, canvas interfaces.Canvas, scheduler Scheduler) *Layout {
	if scheduler == nil {
		scheduler = SystemScheduler()
	}
	return &Layout{
		cfg:       cfg,
		canvas:    canvas,
		scheduler: scheduler,
		state:     types.LayoutIdle,
	}
}

// Notify handles a container width change. Unusable widths are ignored and false is returned.
// Otherwise the canvas is cleared, any pending timer is stopped and a new one is armed;
// fire is called with the timer generation when it expires.
func (l *Layout) Notify(ctx context.Context, containerWidth float64, fire func(generation uint64)) bool {
	dims, ok := l.cfg.Layout(containerWidth)
	if !ok {
		ctxlog.From(ctx).Debug("Container not laid out yet", "width", containerWidth)
		return false
	}

	l.dims = dims
	l.canvas.Clear(ctx)

	if l.timer != nil {
		l.timer.Stop()
	}
	l.generation++
	gen := l.generation
	l.timer = l.scheduler.AfterFunc(l.cfg.Debounce, func() { fire(gen) })
	l.state = types.LayoutPendingRedraw

	ctxlog.From(ctx).Debug("Redraw scheduled",
		"width", dims.Width,
		"height", dims.Height,
		"generation", gen)
	return true
}

// Init sets the dimensions for the first draw without arming a timer
func (l *Layout) Init(containerWidth float64) (model.Dimensions, bool) {
	dims, ok := l.cfg.Layout(containerWidth)
	if !ok {
		return model.Dimensions{}, false
	}
	l.dims = dims
	return dims, true
}

// Fired handles a timer expiry. It returns the dimensions to redraw with and whether a redraw
// should happen. Stale generations are ignored.
func (l *Layout) Fired(generation uint64) (model.Dimensions, bool) {
	if l.state != types.LayoutPendingRedraw || generation != l.generation {
		return model.Dimensions{}, false
	}
	l.state = types.LayoutIdle
	l.timer = nil
	return l.dims, l.dims.Valid()
}

// Stop cancels a pending timer and returns to Idle
func (l *Layout) Stop() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.state = types.LayoutIdle
}

// State returns the current state
func (l *Layout) State() types.LayoutState {
	return l.state
}

// Dimensions returns the last computed drawing dimensions
func (l *Layout) Dimensions() model.Dimensions {
	return l.dims
}
