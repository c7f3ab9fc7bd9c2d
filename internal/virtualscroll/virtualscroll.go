package virtualscroll

import (
	"treescroll/internal/events"
	"treescroll/internal/logger"
)

const (
	// DefaultBufferMargin is how far beyond each viewport edge nodes are still rendered.
	DefaultBufferMargin = 300
	// DefaultQuantum is the scroll distance one yBlock covers.
	DefaultQuantum = 50
)

// Source is the tree a VirtualScroll lays out. Structural changes must be
// published on Bus() using events.StructuralTopics.
type Source[N Node[N]] interface {
	VisibleRoots() []N
	Bus() *events.Bus
}

// Options configures a VirtualScroll.
type Options struct {
	Enabled      bool
	BufferMargin float64
	Quantum      float64
	Log          *logger.LogEntry
}

// VirtualScroll keeps node positions in sync with a Source and decides which
// nodes to materialize for the current scroll offset.
type VirtualScroll[N Node[N]] struct {
	source  Source[N]
	state   *ScrollState
	layout  *Layout[N]
	enabled bool
	margin  float64
	log     *logger.LogEntry

	subs        []*events.Subscription
	initialized bool
	warned      warning
}

type warning int

const (
	warnNone warning = iota
	warnUnknownHeight
	warnZeroHeight
)

// New creates a VirtualScroll over source. FixScroll is wired to every scroll
// state change immediately; Init wires recalculation to the source.
func New[N Node[N]](source Source[N], opts Options) *VirtualScroll[N] {
	entry := opts.Log
	if entry == nil {
		entry = log
	}
	if opts.BufferMargin < 0 {
		opts.BufferMargin = 0
	}
	v := &VirtualScroll[N]{
		source:  source,
		state:   NewScrollState(source.Bus(), opts.Quantum),
		enabled: opts.Enabled,
		margin:  opts.BufferMargin,
		log:     entry,
	}
	v.subs = append(v.subs, source.Bus().Subscribe(events.TopicScrollChanged, func(events.Event) {
		v.state.FixScroll()
	}))
	return v
}

// Init computes positions and subscribes to structural changes of the source.
// Calling it again only recomputes.
func (v *VirtualScroll[N]) Init() {
	v.RecalcPositions()
	if v.initialized {
		return
	}
	v.initialized = true
	bus := v.source.Bus()
	for _, topic := range events.StructuralTopics {
		v.subs = append(v.subs, bus.Subscribe(topic, func(evt events.Event) {
			v.log.WithField("topic", topic).Debugf("structural change, payload=%v", evt.Payload)
			v.RecalcPositions()
		}))
	}
}

// RecalcPositions lays out the source's visible roots from scratch.
func (v *VirtualScroll[N]) RecalcPositions() {
	roots := v.source.VisibleRoots()
	v.layout = Recalculate(roots)
	v.log.WithFields(logger.Fields{
		"roots": len(roots),
		"nodes": v.layout.Len(),
		"total": v.layout.Total(),
	}).Debug("recalculated positions")
	v.state.SetTotalHeight(v.layout.Total())
}

// Clear detaches every subscription. Safe to call more than once.
func (v *VirtualScroll[N]) Clear() {
	for _, sub := range v.subs {
		sub.Unsubscribe()
	}
	v.subs = nil
	v.initialized = false
}

// Layout returns the current snapshot, computing it on first use.
func (v *VirtualScroll[N]) Layout() *Layout[N] {
	if v.layout == nil {
		v.RecalcPositions()
	}
	return v.layout
}

func (v *VirtualScroll[N]) State() *ScrollState { return v.state }

func (v *VirtualScroll[N]) Enabled() bool { return v.enabled }

// SetEnabled toggles windowing. Disabled, ViewportNodes returns every
// non-hidden node.
func (v *VirtualScroll[N]) SetEnabled(enabled bool) { v.enabled = enabled }

func (v *VirtualScroll[N]) BufferMargin() float64 { return v.margin }

func (v *VirtualScroll[N]) Y() float64 { return v.state.Y() }

func (v *VirtualScroll[N]) TotalHeight() float64 { return v.Layout().Total() }

// SetViewport attaches the rendering layer's scroll container.
func (v *VirtualScroll[N]) SetViewport(vp Viewport) {
	v.state.SetViewport(vp)
}

// ScrollIntoView scrolls node into view; see ScrollState.ScrollIntoView.
// Nodes missing from the current layout are ignored.
func (v *VirtualScroll[N]) ScrollIntoView(node N, force, center bool) bool {
	ext, ok := v.Layout().Extent(node)
	if !ok {
		v.log.Debug("scroll into view skipped: node not laid out")
		return false
	}
	return v.state.ScrollIntoView(ext, node.SelfHeight(), force, center)
}

// ViewportNodes returns the slice of nodes to render. nodes must be the
// flattened visible sequence in layout order.
func (v *VirtualScroll[N]) ViewportNodes(nodes []N) []N {
	if nodes == nil {
		return []N{}
	}
	visible := make([]N, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsHidden() {
			visible = append(visible, n)
		}
	}
	if !v.enabled {
		return visible
	}

	height, known := v.state.ViewportHeight()
	switch {
	case !known:
		v.warn(warnUnknownHeight, "virtual scroll has no viewport yet; attach a viewport with a concrete height before rendering")
		return []N{}
	case height == 0:
		v.warn(warnZeroHeight, "virtual scroll viewport height is 0; the rendering container must be given a height when virtual scroll is enabled")
		return []N{}
	}
	v.warned = warnNone
	if len(visible) == 0 {
		return []N{}
	}

	first, last, ok := Window(v.Layout().Extents(visible), v.state.Y(), height, v.margin)
	if !ok {
		return []N{}
	}
	out := make([]N, 0, last-first+1)
	return append(out, visible[first:last+1]...)
}

func (v *VirtualScroll[N]) warn(kind warning, msg string) {
	if v.warned == kind {
		return
	}
	v.warned = kind
	v.log.Warn(msg)
}
