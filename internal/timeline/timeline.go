package timeline

import (
	"fmt"
	"sync"
	"time"
)

// Mode selects between a single instant and a start/end range.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeRange  Mode = "range"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeSingle || m == ModeRange
}

// Handle names a draggable timeline handle. In range mode the primary handle
// drives the start and the secondary handle drives the end.
type Handle string

const (
	HandlePrimary   Handle = "primary"
	HandleSecondary Handle = "secondary"
)

// Track is the pixel extent of the timeline track on screen.
type Track struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width" validate:"gt=0"`
}

// Window is the fixed selectable interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Selection is the current choice. Mode tags which fields are meaningful:
// Instant for single, Start/End for range.
type Selection struct {
	Mode    Mode      `json:"mode"`
	Instant time.Time `json:"instant"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// QueryInstant is the instant weather is fetched for: the selected instant, or the
// start of the range. The end of a range is never queried.
func (s Selection) QueryInstant() time.Time {
	if s.Mode == ModeRange {
		return s.Start
	}
	return s.Instant
}

// Model holds the timeline state. It is safe for concurrent use; listeners are
// invoked outside the lock.
type Model struct {
	mu sync.Mutex

	window     Window
	mode       Mode
	selected   time.Time
	rangeStart time.Time
	rangeEnd   time.Time
	dragging   Handle

	listeners []func(Selection)
}

// New builds a model whose window is [now-daysBefore, now+daysAfter]. The window is
// fixed at construction and does not move as time passes.
func New(now time.Time, daysBefore, daysAfter int) *Model {
	day := 24 * time.Hour
	return &Model{
		window: Window{
			Start: now.Add(-time.Duration(daysBefore) * day),
			End:   now.Add(time.Duration(daysAfter) * day),
		},
		mode:       ModeSingle,
		selected:   now,
		rangeStart: now.Add(-2 * time.Hour),
		rangeEnd:   now,
	}
}

// OnChange registers fn to be called after every state-affecting change.
func (m *Model) OnChange(fn func(Selection)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Window returns the fixed selectable window.
func (m *Model) Window() Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.window
}

// Mode returns the current mode.
func (m *Model) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Dragging returns the handle being dragged, or "" when idle.
func (m *Model) Dragging() Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dragging
}

// Selection returns a snapshot of the current selection.
func (m *Model) Selection() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectionLocked()
}

func (m *Model) selectionLocked() Selection {
	return Selection{
		Mode:    m.mode,
		Instant: m.selected,
		Start:   m.rangeStart,
		End:     m.rangeEnd,
	}
}

// PositionToInstant maps x linearly from the track onto the window. The fractional
// position is clamped to [0,1], so the result is always inside the window.
func (m *Model) PositionToInstant(x float64, track Track) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positionToInstantLocked(x, track)
}

func (m *Model) positionToInstantLocked(x float64, track Track) time.Time {
	if track.Width <= 0 {
		return m.window.Start
	}

	percent := (x - track.Left) / track.Width
	if percent < 0 {
		percent = 0
	} else if percent > 1 {
		percent = 1
	}

	total := m.window.End.Sub(m.window.Start)
	return m.window.Start.Add(time.Duration(percent * float64(total)))
}

// BeginDrag starts dragging h.
func (m *Model) BeginDrag(h Handle) error {
	if h != HandlePrimary && h != HandleSecondary {
		return fmt.Errorf("unknown timeline handle %q", h)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.dragging = h
	return nil
}

// DragTo moves the active handle to x. In range mode the opposite bound is pulled
// along whenever the move would cross it, so start <= end always holds.
// It reports false when no drag is active. Listeners are not notified until EndDrag.
func (m *Model) DragTo(x float64, track Track) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dragging == "" {
		return false
	}

	t := m.positionToInstantLocked(x, track)

	if m.mode == ModeSingle {
		m.selected = t
		return true
	}

	if m.dragging == HandlePrimary {
		m.rangeStart = t
		if m.rangeStart.After(m.rangeEnd) {
			m.rangeEnd = m.rangeStart
		}
	} else {
		m.rangeEnd = t
		if m.rangeEnd.Before(m.rangeStart) {
			m.rangeStart = m.rangeEnd
		}
	}
	return true
}

// EndDrag finishes an active drag and notifies listeners.
func (m *Model) EndDrag() bool {
	m.mu.Lock()
	if m.dragging == "" {
		m.mu.Unlock()
		return false
	}
	m.dragging = ""
	sel, listeners := m.selectionLocked(), m.listeners
	m.mu.Unlock()

	notify(listeners, sel)
	return true
}

// ClickTrack jumps the selection to the clicked instant. In range mode the current
// duration is kept and the range is re-anchored at the click; the resulting end is not
// clamped to the window. Clicks during a drag are ignored.
func (m *Model) ClickTrack(x float64, track Track) bool {
	m.mu.Lock()
	if m.dragging != "" {
		m.mu.Unlock()
		return false
	}

	t := m.positionToInstantLocked(x, track)
	if m.mode == ModeSingle {
		m.selected = t
	} else {
		duration := m.rangeEnd.Sub(m.rangeStart)
		m.rangeStart = t
		m.rangeEnd = t.Add(duration)
	}
	sel, listeners := m.selectionLocked(), m.listeners
	m.mu.Unlock()

	notify(listeners, sel)
	return true
}

// SetMode switches mode and notifies listeners.
func (m *Model) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown timeline mode %q", mode)
	}

	m.mu.Lock()
	m.mode = mode
	m.dragging = ""
	sel, listeners := m.selectionLocked(), m.listeners
	m.mu.Unlock()

	notify(listeners, sel)
	return nil
}

func notify(listeners []func(Selection), sel Selection) {
	for _, fn := range listeners {
		fn(sel)
	}
}

const displayLayout = "Jan 2, 15:04"

// FormatTime renders t the way the timeline labels do.
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(displayLayout)
}

// Label describes the selection for display.
func (s Selection) Label(loc *time.Location) string {
	if s.Mode == ModeRange {
		return fmt.Sprintf("Range: %s - %s", FormatTime(s.Start, loc), FormatTime(s.End, loc))
	}
	return "Selected: " + FormatTime(s.Instant, loc)
}
