package interfaces

import (
	"context"

	"github.com/secmon-lab/suistat/pkg/domain/model"
	"github.com/secmon-lab/suistat/pkg/domain/types"
)

// SelectionWidget is a single-value selection control (country, year or chart type)
type SelectionWidget interface {
	// Current returns the current text of the widget
	Current() string
	// Set replaces the current text and notifies subscribers when it changed
	Set(value string)
	// Subscribe registers fn to be called after every change
	Subscribe(fn func(value string)) (cancel func())
}

// Container reports the width of the element hosting the chart
type Container interface {
	Current() float64
	Subscribe(fn func(width float64)) (cancel func())
}

// Canvas is the drawing surface of the chart
type Canvas interface {
	Clear(ctx context.Context)
	Draw(ctx context.Context, scene *model.Scene) error
}

// DisplaySlots are the four summary text areas next to the chart
type DisplaySlots interface {
	// SetSlots replaces the given slots in one update
	SetSlots(ctx context.Context, values map[types.SlotID]model.SlotValue)
}

// RenderNotifier is told about every completed render
type RenderNotifier interface {
	NotifyRender(ctx context.Context, sel model.Selection, scene *model.Scene, summary model.Summary) error
}
