// Package emitter publishes hand presence and held-object events.
package emitter

import (
	"time"

	"github.com/ayusman/handfusion/internal/fusion"
	"github.com/ayusman/handfusion/internal/roi"
)

// EventType names a hand state change.
type EventType string

const (
	HandFound   EventType = "hand_found"
	HandLost    EventType = "hand_lost"
	ObjectFound EventType = "object_found"
	ObjectLost  EventType = "object_lost"
)

// HandEvent is the JSON payload published for each change.
type HandEvent struct {
	Session      string       `json:"session"`
	Type         EventType    `json:"type"`
	Side         string       `json:"side"`
	Tick         int64        `json:"tick"`
	Timestamp    time.Time    `json:"timestamp"`
	Cursor       fusion.Point `json:"cursor"`
	SkinArea     int          `json:"skin_area"`
	ObjectRegion *roi.Region  `json:"object_region,omitempty"`
}

// handState is what is compared between ticks.
type handState struct {
	present bool
	object  bool
}

// diff returns the events turning prev into the hands of s.
func diff(prev [2]handState, s fusion.Summary, now time.Time) ([]HandEvent, [2]handState) {
	var events []HandEvent
	var next [2]handState

	for i, h := range s.Hands {
		next[i] = handState{present: h.Present, object: h.Present && h.ObjectFound}

		base := HandEvent{
			Side:      h.Side,
			Tick:      s.Tick,
			Timestamp: now,
			Cursor:    h.Cursor,
			SkinArea:  h.SkinArea,
		}

		if next[i].present != prev[i].present {
			e := base
			e.Type = HandLost
			if next[i].present {
				e.Type = HandFound
			}
			events = append(events, e)
		}
		if next[i].object != prev[i].object {
			e := base
			e.Type = ObjectLost
			if next[i].object {
				e.Type = ObjectFound
				region := h.ObjectRegion
				e.ObjectRegion = &region
			}
			events = append(events, e)
		}
	}

	return events, next
}
