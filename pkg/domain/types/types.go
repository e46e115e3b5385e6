package types

import (
	"github.com/google/uuid"
)

// RenderID identifies a single rendered scene
type RenderID string

// String returns the string representation
func (id RenderID) String() string {
	return string(id)
}

// NewRenderID creates a new RenderID using UUID v7 so that IDs sort by render time
func NewRenderID() RenderID {
	id, err := uuid.NewV7()
	if err != nil {
		return RenderID(uuid.New().String())
	}
	return RenderID(id.String())
}

// SubscriptionID identifies a subscription to a widget or board
type SubscriptionID string

// String returns the string representation
func (id SubscriptionID) String() string {
	return string(id)
}

// NewSubscriptionID creates a new SubscriptionID
func NewSubscriptionID() SubscriptionID {
	return SubscriptionID(uuid.New().String())
}

// SlotID identifies one of the four summary display slots
type SlotID string

const (
	SlotTotal   SlotID = "total"
	SlotAverage SlotID = "average"
	// SlotGroupA holds the male rate in the line view and the highest age group in the bar view
	SlotGroupA SlotID = "group_a"
	// SlotGroupB holds the female rate in the line view and the lowest age group in the bar view
	SlotGroupB SlotID = "group_b"
)

// String returns the string representation
func (id SlotID) String() string {
	return string(id)
}

// IsValid checks if the slot ID is one of the known slots
func (id SlotID) IsValid() bool {
	switch id {
	case SlotTotal, SlotAverage, SlotGroupA, SlotGroupB:
		return true
	default:
		return false
	}
}

// AllSlots returns every slot in display order
func AllSlots() []SlotID {
	return []SlotID{SlotTotal, SlotAverage, SlotGroupA, SlotGroupB}
}
