package virtualscroll

import (
	"math"

	"treescroll/internal/events"
)

// Geometry is what a viewport reports about itself.
type Geometry struct {
	ScrollLeft float64
	ScrollTop  float64
	Height     float64
}

// Viewport is the scrollable container owned by the rendering layer.
// WriteScrollOffset may clamp; ScrollState reads the offset back after writing.
type Viewport interface {
	ReadViewportGeometry() Geometry
	WriteScrollOffset(top float64)
}

// ScrollState holds the quantized vertical offset, the horizontal offset and
// the viewport height. Every change to the offset, the viewport height or the
// total content height is published on events.TopicScrollChanged.
type ScrollState struct {
	bus     *events.Bus
	quantum float64

	yBlocks        int
	x              float64
	viewportHeight float64
	hasHeight      bool
	total          float64
	viewport       Viewport
}

// NewScrollState creates a detached scroll state. quantum is the size of one
// yBlock; non-positive values fall back to DefaultQuantum.
func NewScrollState(bus *events.Bus, quantum float64) *ScrollState {
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	return &ScrollState{bus: bus, quantum: quantum}
}

// Y is the quantized vertical offset.
func (s *ScrollState) Y() float64 {
	return float64(s.yBlocks) * s.quantum
}

func (s *ScrollState) YBlocks() int { return s.yBlocks }

func (s *ScrollState) X() float64 { return s.x }

func (s *ScrollState) Quantum() float64 { return s.quantum }

func (s *ScrollState) TotalHeight() float64 { return s.total }

// Attached reports whether a viewport handle is attached.
func (s *ScrollState) Attached() bool { return s.viewport != nil }

// ViewportHeight returns the viewport height, or false while it is unknown.
func (s *ScrollState) ViewportHeight() (float64, bool) {
	return s.viewportHeight, s.hasHeight
}

// SetViewport attaches v and adopts its current geometry. Passing nil detaches
// the viewport and forgets its height.
func (s *ScrollState) SetViewport(v Viewport) {
	s.viewport = v
	if v == nil {
		s.hasHeight = false
		s.viewportHeight = 0
		s.notify()
		return
	}
	s.adopt(v.ReadViewportGeometry())
}

// Refresh re-reads the attached viewport's geometry, e.g. after a resize or a
// scroll performed by the rendering layer. No-op when detached.
func (s *ScrollState) Refresh() {
	if s.viewport == nil {
		return
	}
	s.adopt(s.viewport.ReadViewportGeometry())
}

func (s *ScrollState) adopt(g Geometry) {
	s.x = g.ScrollLeft
	s.yBlocks = int(math.Round(g.ScrollTop / s.quantum))
	s.viewportHeight = g.Height
	s.hasHeight = true
	s.notify()
}

// SetTotalHeight records the content height after a recalculation.
func (s *ScrollState) SetTotalHeight(total float64) {
	if total == s.total {
		return
	}
	s.total = total
	s.notify()
}

// ScrollIntoView scrolls the viewport so the row at ext (whose own height is
// selfHeight) becomes visible. It does nothing unless force is set or the row
// starts above or ends below the viewport. With center the row is placed in
// the middle of the viewport, otherwise at its top.
func (s *ScrollState) ScrollIntoView(ext Extent, selfHeight float64, force, center bool) bool {
	if s.viewport == nil {
		return false
	}
	y := s.Y()
	above := ext.Position < y
	below := ext.Position+selfHeight > y+s.viewportHeight
	if !force && !above && !below {
		return false
	}
	top := ext.Position
	if center {
		top = ext.Position - s.viewportHeight/2
	}
	s.viewport.WriteScrollOffset(top)
	g := s.viewport.ReadViewportGeometry()
	s.setYBlocks(int(math.Floor(g.ScrollTop / s.quantum)))
	return true
}

// FixScroll clamps the offset to [0, max(0, total-viewportHeight)]. No-op while
// no viewport is attached.
func (s *ScrollState) FixScroll() {
	if s.viewport == nil {
		return
	}
	maxY := math.Max(0, s.total-s.viewportHeight)
	if s.Y() < 0 {
		s.setYBlocks(0)
	}
	if s.Y() > maxY {
		s.setYBlocks(int(math.Floor(maxY / s.quantum)))
	}
}

func (s *ScrollState) setYBlocks(v int) {
	if v == s.yBlocks {
		return
	}
	s.yBlocks = v
	s.notify()
}

func (s *ScrollState) notify() {
	if s.bus != nil {
		s.bus.Publish(events.TopicScrollChanged, s.yBlocks)
	}
}
