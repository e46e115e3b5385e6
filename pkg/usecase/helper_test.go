package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/repository"
	"github.com/secmon-lab/suistat/pkg/service/board"
	"github.com/secmon-lab/suistat/pkg/service/dataset"
	"github.com/secmon-lab/suistat/pkg/service/widget"
	"github.com/secmon-lab/suistat/pkg/usecase"
)

type fakeTimer struct {
	s       *fakeScheduler
	fn      func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) usecase.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, fn: fn, delay: d}
	s.timers = append(s.timers, t)
	return t
}

// fireAll runs every armed timer that is still active, like time passing beyond the debounce
func (s *fakeScheduler) fireAll() int {
	s.mu.Lock()
	var active []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			active = append(active, t)
		}
	}
	s.mu.Unlock()

	for _, t := range active {
		t.fn()
	}
	return len(active)
}

// fireStale runs a timer even though it was stopped, like a timer racing its Stop call
func (s *fakeScheduler) fireStale(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	t.fn()
}

func (s *fakeScheduler) armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func datasetRows() []model.Row {
	return []model.Row{
		{"country": "Albania", "year": "1987", "sex": "male", "age": "15-24 years", "suicides_no": "21"},
		{"country": "Albania", "year": "1987", "sex": "female", "age": "15-24 years", "suicides_no": "14"},
		{"country": "Albania", "year": "1987", "sex": "male", "age": "35-54 years", "suicides_no": "16"},
		{"country": "Albania", "year": "1988", "sex": "male", "age": "15-24 years", "suicides_no": "10"},
		{"country": "Albania", "year": "1988", "sex": "female", "age": "25-34 years", "suicides_no": "6"},
		{"country": "Argentina", "year": "1990", "sex": "male", "age": "75+ years", "suicides_no": "100"},
		{"country": "Argentina", "year": "1985", "sex": "female", "age": "5-14 years", "suicides_no": "8"},
	}
}

type fixture struct {
	cfg       *model.DashboardConfig
	source    *repository.Memory
	board     *board.Board
	dashboard *usecase.Dashboard
	country   *widget.Value[string]
	year      *widget.Value[string]
	chart     *widget.Value[string]
	container *widget.Value[float64]
	scheduler *fakeScheduler
}

func newFixture(opts ...usecase.DashboardOption) *fixture {
	cfg := model.DefaultDashboardConfig()
	source := repository.NewMemory(datasetRows())
	b := board.New()
	return &fixture{
		cfg:       cfg,
		source:    source,
		board:     b,
		dashboard: usecase.NewDashboard(cfg, dataset.NewCache(source), b, b, opts...),
		country:   widget.New("Albania"),
		year:      widget.New("1987"),
		chart:     widget.New("Line Chart"),
		container: widget.New(800.0),
		scheduler: &fakeScheduler{},
	}
}

func (f *fixture) selection() *usecase.Selection {
	return usecase.NewSelection(f.country, f.year, f.chart)
}

// start runs a controller until the test ends
func (f *fixture) start(ctx context.Context) (*usecase.Controller, func()) {
	layout := usecase.NewLayout(f.cfg, f.board, f.scheduler)
	ctrl := usecase.NewController(f.dashboard, layout, f.selection(), f.container)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()
	return ctrl, func() {
		cancel()
		<-done
	}
}
