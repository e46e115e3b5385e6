// Package board holds the rendered dashboard: the chart canvas and the four summary slots.
package board

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
	"github.com/secmon-lab/suistat/pkg/service/chart"
)

// Snapshot is an immutable view of the board at one version
type Snapshot struct {
	Version   uint64                            `json:"version"`
	UpdatedAt time.Time                         `json:"updated_at"`
	Scene     *model.Scene                      `json:"scene,omitempty"`
	SVG       string                            `json:"svg,omitempty"`
	Slots     map[types.SlotID]model.SlotValue `json:"slots"`
}

// Blank reports whether no chart is drawn
func (s Snapshot) Blank() bool {
	return s.Scene == nil
}

// Board is an in-memory canvas with display slots. Every mutation bumps the version
// and notifies subscribers.
type Board struct {
	mu      sync.RWMutex
	version uint64
	updated time.Time
	scene   *model.Scene
	svg     string
	slots   map[types.SlotID]model.SlotValue

	subMu sync.Mutex
	subs  map[types.SubscriptionID]func(Snapshot)
}

// New creates an empty board
func New() *Board {
	return &Board{
		slots: make(map[types.SlotID]model.SlotValue),
		subs:  make(map[types.SubscriptionID]func(Snapshot)),
	}
}

// Clear removes the drawn chart. Slots keep their values.
func (b *Board) Clear(ctx context.Context) {
	b.mu.Lock()
	if b.scene == nil {
		b.mu.Unlock()
		return
	}
	b.scene = nil
	b.svg = ""
	snap := b.bump()
	b.mu.Unlock()

	ctxlog.From(ctx).Debug("Canvas cleared", "version", snap.Version)
	b.publish(snap)
}

// Draw replaces the canvas content with scene
func (b *Board) Draw(ctx context.Context, scene *model.Scene) error {
	if scene == nil {
		return goerr.New("scene is nil")
	}
	svg := chart.SVG(scene)

	b.mu.Lock()
	b.scene = scene
	b.svg = svg
	snap := b.bump()
	b.mu.Unlock()

	ctxlog.From(ctx).Debug("Canvas drawn",
		"version", snap.Version,
		"kind", scene.Kind,
		"render_id", scene.ID)
	b.publish(snap)
	return nil
}

// SetSlot writes one display slot
func (b *Board) SetSlot(ctx context.Context, slot types.SlotID, heading, value string) {
	b.SetSlots(ctx, map[types.SlotID]model.SlotValue{
		slot: {Heading: heading, Value: value},
	})
}

// SetSlots writes several display slots as one change
func (b *Board) SetSlots(ctx context.Context, values map[types.SlotID]model.SlotValue) {
	b.mu.Lock()
	changed := false
	for slot, next := range values {
		if b.slots[slot] == next {
			continue
		}
		b.slots[slot] = next
		changed = true
	}
	if !changed {
		b.mu.Unlock()
		return
	}
	snap := b.bump()
	b.mu.Unlock()

	ctxlog.From(ctx).Debug("Slots updated", "version", snap.Version, "slots", len(values))
	b.publish(snap)
}

// Snapshot returns the current state of the board
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change
func (b *Board) Subscribe(fn func(Snapshot)) func() {
	id := types.NewSubscriptionID()
	b.subMu.Lock()
	b.subs[id] = fn
	b.subMu.Unlock()

	return func() {
		b.subMu.Lock()
		delete(b.subs, id)
		b.subMu.Unlock()
	}
}

// bump must be called with the write lock held
func (b *Board) bump() Snapshot {
	b.version++
	b.updated = time.Now()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	slots := make(map[types.SlotID]model.SlotValue, len(b.slots))
	for k, v := range b.slots {
		slots[k] = v
	}
	return Snapshot{
		Version:   b.version,
		UpdatedAt: b.updated,
		Scene:     b.scene,
		SVG:       b.svg,
		Slots:     slots,
	}
}

func (b *Board) publish(snap Snapshot) {
	b.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
