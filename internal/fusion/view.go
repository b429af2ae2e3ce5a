package fusion

import (
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/handfusion/internal/skeleton"
)

// Whole-frame view names. Hand views are named "<side>-<buffer>", for
// example "left-skin" or "right-object-color".
const (
	ViewDepth = "depth"
	ViewColor = "color"
)

var handBufferNames = []string{"color", "depth", "skin", "object", "object-color"}

// Views lists every view name a Result can provide.
func Views() []string {
	views := []string{ViewDepth, ViewColor}
	for _, side := range skeleton.Sides {
		for _, b := range handBufferNames {
			views = append(views, side.String()+"-"+b)
		}
	}
	return views
}

// ValidView reports whether name is one of Views.
func ValidView(name string) bool {
	for _, v := range Views() {
		if v == name {
			return true
		}
	}
	return false
}

// View returns the Mat behind a view name. Hand views of an absent hand
// report false.
func (r *Result) View(name string) (*gocv.Mat, bool) {
	switch name {
	case ViewDepth:
		return &r.Depth, true
	case ViewColor:
		return &r.Color, true
	}

	sideName, buffer, ok := strings.Cut(name, "-")
	if !ok {
		return nil, false
	}
	var h *HandResult
	for _, side := range skeleton.Sides {
		if side.String() == sideName {
			h = r.Hand(side)
		}
	}
	if h == nil || !h.Present || h.Buffers == nil {
		return nil, false
	}

	switch buffer {
	case "color":
		return &h.Buffers.Color, true
	case "depth":
		return &h.Buffers.Depth, true
	case "skin":
		return &h.Buffers.Skin, true
	case "object":
		return &h.Buffers.Object, true
	case "object-color":
		return &h.Buffers.ObjectColor, true
	}
	return nil, false
}
