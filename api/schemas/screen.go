// api/schemas/screen.go
package schemas

import "time"

// Point is a screen coordinate in full-resolution pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is an axis-aligned screen rectangle in full-resolution pixels.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies within the rectangle (inclusive edges).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// RegionKind classifies a detected interactive region. The classification is a
// geometric heuristic, not a learned detector; Unknown is a valid outcome.
type RegionKind string

const (
	RegionButton    RegionKind = "button"
	RegionTextField RegionKind = "text_field"
	RegionUnknown   RegionKind = "unknown"
)

// Region is a candidate interactive element detected on screen. Regions are
// listed in detection order; relevance is always computed explicitly by the
// resolver, never implied by position in the slice.
type Region struct {
	Center Point      `json:"center"`
	Bounds Rect       `json:"bounds"`
	Area   int        `json:"area"`
	Kind   RegionKind `json:"kind"`
	// NearbyText holds OCR output for the region's own bounding box, when the
	// analyzer could afford a per-region pass. Empty means "not sampled", not
	// "no text".
	NearbyText string `json:"nearby_text,omitempty"`
}

// AppIdentity describes the foreground application at capture time.
type AppIdentity struct {
	Title  string `json:"title"`
	Name   string `json:"name"`
	Bounds *Rect  `json:"bounds,omitempty"`
}

// UnknownApp is the degraded identity used when the active window cannot be read.
var UnknownApp = AppIdentity{Title: "Unknown", Name: "Unknown"}

// LayoutZone names a coarse horizontal band of the screen.
type LayoutZone string

const (
	ZoneTop    LayoutZone = "top"
	ZoneMiddle LayoutZone = "middle"
	ZoneBottom LayoutZone = "bottom"
)

// ScreenState is an immutable snapshot of the visible desktop produced by one
// analysis cycle. A snapshot with empty text and no regions is a valid degraded
// result; consumers must never receive a nil ScreenState.
type ScreenState struct {
	App        AppIdentity         `json:"foreground_app"`
	Text       string              `json:"text_content"`
	Regions    []Region            `json:"regions"`
	Layout     map[LayoutZone]Rect `json:"layout"`
	CapturedAt time.Time           `json:"captured_at"`
}

// Degraded reports whether the snapshot carries no usable signal.
func (s ScreenState) Degraded() bool {
	return s.Text == "" && len(s.Regions) == 0
}
