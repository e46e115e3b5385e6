package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/utils/apperr"
)

const eventQueueSize = 64

type event interface{}

type selectionEvent struct{ source ChangeSource }
type resizeEvent struct{ width float64 }
type timerEvent struct{ generation uint64 }
type barrierEvent struct{ done chan struct{} }

// Status is a point-in-time view of the controller
type Status struct {
	Layout     types.LayoutState `json:"layout"`
	Dimensions model.Dimensions  `json:"dimensions"`
	Redraws    int               `json:"redraws"`
	LastError  string            `json:"last_error,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Controller serializes selection changes, container resizes and debounce timers
// on a single goroutine and redraws the dashboard at most once per batch of events.
type Controller struct {
	dashboard *Dashboard
	layout    *Layout
	selection *Selection
	container interfaces.Container

	events chan event
	done   chan struct{}

	mu     sync.Mutex
	status Status
}

// NewController creates a Controller. Run must be called to start processing.
func NewController(dashboard *Dashboard, layout *Layout, selection *Selection, container interfaces.Container) *Controller {
	return &Controller{
		dashboard: dashboard,
		layout:    layout,
		selection: selection,
		container: container,
		events:    make(chan event, eventQueueSize),
		done:      make(chan struct{}),
		status:    Status{Layout: types.LayoutIdle},
	}
}

// Run subscribes to the widgets, draws the initial chart and processes events until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	cancelSelection := c.selection.Subscribe(func(source ChangeSource) {
		c.post(selectionEvent{source: source})
	})
	defer cancelSelection()

	cancelContainer := c.container.Subscribe(func(width float64) {
		c.post(resizeEvent{width: width})
	})
	defer cancelContainer()
	defer c.layout.Stop()

	if _, ok := c.layout.Init(c.container.Current()); ok {
		c.redraw(ctx)
	} else {
		ctxlog.From(ctx).Debug("Initial draw deferred until container has a width")
	}
	c.updateLayoutStatus()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			c.process(ctx, c.drain(ev))
		}
	}
}

// Flush waits until every event posted before the call has been processed
func (c *Controller) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case c.events <- barrierEvent{done: done}:
	case <-c.done:
		return goerr.New("controller is not running")
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "flush cancelled")
	}

	select {
	case <-done:
		return nil
	case <-c.done:
		return goerr.New("controller stopped before flush completed")
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "flush cancelled")
	}
}

// Selection returns the selection the next redraw will use
func (c *Controller) Selection() (model.Selection, error) {
	return c.selection.Snapshot()
}

// Status returns the current controller status
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) drain(first event) []event {
	batch := []event{first}
	for {
		select {
		case ev := <-c.events:
			batch = append(batch, ev)
		default:
			return batch
		}
	}
}

func (c *Controller) process(ctx context.Context, batch []event) {
	needRedraw := false
	var barriers []chan struct{}

	for _, ev := range batch {
		switch ev := ev.(type) {
		case selectionEvent:
			redraw, err := c.selection.ShouldRedraw(ev.source)
			if err != nil {
				c.fail(ctx, err)
				continue
			}
			if redraw {
				needRedraw = true
			}

		case resizeEvent:
			c.layout.Notify(ctx, ev.width, func(gen uint64) {
				c.post(timerEvent{generation: gen})
			})

		case timerEvent:
			if _, ok := c.layout.Fired(ev.generation); ok {
				needRedraw = true
			}

		case barrierEvent:
			barriers = append(barriers, ev.done)
		}
	}

	// A pending debounce timer redraws with the new size later.
	if needRedraw && c.layout.State() == types.LayoutIdle {
		c.redraw(ctx)
	}
	c.updateLayoutStatus()

	for _, done := range barriers {
		close(done)
	}
}

func (c *Controller) redraw(ctx context.Context) {
	sel, err := c.selection.Snapshot()
	if err != nil {
		c.fail(ctx, err)
		return
	}

	if err := c.dashboard.Redraw(ctx, sel, c.layout.Dimensions()); err != nil {
		c.fail(ctx, err)
		return
	}

	c.mu.Lock()
	c.status.Redraws++
	c.status.LastError = ""
	c.status.UpdatedAt = time.Now()
	c.mu.Unlock()
}

func (c *Controller) fail(ctx context.Context, err error) {
	apperr.Handle(ctx, err)
	c.mu.Lock()
	c.status.LastError = err.Error()
	c.status.UpdatedAt = time.Now()
	c.mu.Unlock()
}

func (c *Controller) updateLayoutStatus() {
	c.mu.Lock()
	c.status.Layout = c.layout.State()
	c.status.Dimensions = c.layout.Dimensions()
	c.mu.Unlock()
}
