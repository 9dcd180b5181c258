package scroll

const (
	// DefaultBatch is the number of weeks added per growth step.
	DefaultBatch = 8
	// MinBatch keeps growth coarse enough to amortize re-layout.
	MinBatch = 6
)

// Range is the half-open interval [Head, Tail) of materialized week offsets.
type Range struct {
	Head int
	Tail int
}

// Len returns the number of materialized weeks.
func (r Range) Len() int {
	return r.Tail - r.Head
}

// Contains reports whether week is materialized.
func (r Range) Contains(week int) bool {
	return r.Head <= week && week < r.Tail
}

// Valid reports whether the range is non-empty.
func (r Range) Valid() bool {
	return r.Head < r.Tail
}

// Window owns the materialized range. It only ever grows.
type Window struct {
	r     Range
	batch int
}

// NewWindow returns a window of [-batch, 2*batch).
func NewWindow(batch int) *Window {
	if batch < MinBatch {
		batch = MinBatch
	}
	return &Window{
		r:     Range{Head: -batch, Tail: 2 * batch},
		batch: batch,
	}
}

func (w *Window) Range() Range {
	return w.r
}

func (w *Window) Batch() int {
	return w.batch
}

// Row maps a week offset to its row index within the window.
func (w *Window) Row(week int) (int, bool) {
	if !w.r.Contains(week) {
		return 0, false
	}
	return week - w.r.Head, true
}

// Week maps a row index back to its week offset.
func (w *Window) Week(row int) int {
	return w.r.Head + row
}

// ExtendHead prepends one batch of weeks.
func (w *Window) ExtendHead() {
	w.r.Head -= w.batch
}

// ExtendTail appends one batch of weeks.
func (w *Window) ExtendTail() {
	w.r.Tail += w.batch
}

// EnsureCovers grows the window in batches until week is materialized and
// returns how many weeks were prepended.
func (w *Window) EnsureCovers(week int) (prepended int) {
	for week < w.r.Head {
		w.ExtendHead()
		prepended += w.batch
	}
	for week >= w.r.Tail {
		w.ExtendTail()
	}
	return prepended
}

// Reset replaces an inconsistent range with a minimal one around center.
func (w *Window) Reset(center int) {
	w.r = Range{Head: center - w.batch, Tail: center + w.batch}
}
