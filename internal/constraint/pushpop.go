package constraint

// assertionStack models the incremental push/pop framing the spec requires
// of the encoder, even though the current constraint set is decided in
// closed form rather than by an external solver. A real SMT-backed decision
// procedure would open a frame per existing meeting, assert the room and
// participant overlap predicates into it, and retract the frame afterward so
// later constraints (preferred rooms, soft-priority participants) can be
// layered on without rebuilding the whole formula. Keeping that shape here
// means swapping in such a backend later changes only the assert step, not
// the calling convention.
type assertionStack struct {
	frames [][]string
}

// push opens a new assertion frame.
func (s *assertionStack) push() {
	s.frames = append(s.frames, nil)
}

// assert records a witness string into the current frame.
func (s *assertionStack) assert(witness string) {
	if len(s.frames) == 0 {
		s.push()
	}
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], witness)
}

// pop closes the current frame, returning any witnesses it accumulated.
func (s *assertionStack) pop() []string {
	if len(s.frames) == 0 {
		return nil
	}
	top := len(s.frames) - 1
	witnesses := s.frames[top]
	s.frames = s.frames[:top]
	return witnesses
}

// all flattens every witness asserted across all frames still open, in
// assertion order.
func (s *assertionStack) all() []string {
	var out []string
	for _, frame := range s.frames {
		out = append(out, frame...)
	}
	return out
}
