package scroll

// OnScroll reacts to a scroll of the host's viewport. It grows the window
// near either edge and re-resolves the header. Growing the head is only done
// while moving upward; the offset correction for the prepended rows is queued
// for the next frame, once the host has laid them out.
func (s *Scroller) OnScroll() {
	off := s.host.ScrollOffset()
	delta := off - s.lastOffset
	if delta == 0 || abs(delta) < s.opts.Jitter {
		return
	}
	goingUp := delta < 0
	s.lastOffset = off

	// Programmatic scrolls must not be mistaken for the user approaching an edge.
	if s.autoScroll {
		return
	}
	s.checkRange()
	if !s.layoutReady() {
		return
	}

	content := s.host.ContentHeight()
	if off+s.host.ViewportHeight() >= content-s.opts.TailThreshold {
		s.win.ExtendTail()
		if s.pending == nil {
			s.pending = &adjustment{kind: adjustSettle}
		}
	}
	if goingUp && off < s.opts.HeadThreshold && s.canStabilize() {
		s.pending = &adjustment{kind: adjustStabilize, baseline: content}
		s.win.ExtendHead()
		return
	}
	s.Resolve()
}

// canStabilize reports whether a head correction may take the pending slot.
// A queued target or correction already accounts for the rows above.
func (s *Scroller) canStabilize() bool {
	return s.pending == nil || s.pending.kind == adjustSettle
}

// stabilize shifts the offset by the height added above since baseline, so
// the row at the top of the viewport stays where it was.
func (s *Scroller) stabilize(baseline int) {
	if delta := s.host.ContentHeight() - baseline; delta != 0 {
		s.host.SetScrollOffset(s.host.ScrollOffset() + delta)
	}
	s.lastOffset = s.host.ScrollOffset()
	s.Resolve()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
