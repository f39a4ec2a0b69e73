package vtcore

import "sync"

// MemoryScrollback is an in-memory, ring-buffer-backed [ScrollbackProvider].
// It retains up to a configurable number of lines retired from the top of the
// primary buffer, evicting the oldest line whenever the limit is exceeded.
//
//	storage := vtcore.NewMemoryScrollback(10000)
//	term := vtcore.New(vtcore.WithScrollback(storage))
type MemoryScrollback struct {
	mu    sync.Mutex
	lines []([]Cell)
	start int // index of the oldest line within lines, when wrapped
	count int
	max   int
}

// NewMemoryScrollback creates an in-memory scrollback store capped at max lines.
// A max of 0 disables retention (every Push is a no-op), matching [NoopScrollback].
func NewMemoryScrollback(max int) *MemoryScrollback {
	if max < 0 {
		max = 0
	}
	return &MemoryScrollback{
		lines: make([]([]Cell), max),
		max:   max,
	}
}

// Push appends a line to scrollback, evicting the oldest line if at capacity.
func (s *MemoryScrollback) Push(line []Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max == 0 {
		return
	}

	cp := make([]Cell, len(line))
	copy(cp, line)

	if s.count < s.max {
		idx := (s.start + s.count) % s.max
		s.lines[idx] = cp
		s.count++
		return
	}

	// At capacity: overwrite the oldest slot and advance start.
	s.lines[s.start] = cp
	s.start = (s.start + 1) % s.max
}

// Len returns the current number of stored lines.
func (s *MemoryScrollback) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Line returns the line at index, where 0 is the oldest retained line.
// Returns nil if index is out of range.
func (s *MemoryScrollback) Line(index int) []Cell {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.count {
		return nil
	}
	return s.lines[(s.start+index)%s.max]
}

// Clear removes all stored lines without changing the capacity.
func (s *MemoryScrollback) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make([]([]Cell), s.max)
	s.start = 0
	s.count = 0
}

// SetMaxLines changes the capacity, trimming the oldest lines if the new
// capacity is smaller than the current line count.
func (s *MemoryScrollback) SetMaxLines(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if max < 0 {
		max = 0
	}

	kept := s.count
	if kept > max {
		kept = max
	}

	next := make([]([]Cell), max)
	drop := s.count - kept
	for i := 0; i < kept; i++ {
		next[i] = s.lines[(s.start+drop+i)%s.maxOrOne()]
	}

	s.lines = next
	s.start = 0
	s.count = kept
	s.max = max
}

// maxOrOne guards the modulo above against a zero-capacity ring during resize.
func (s *MemoryScrollback) maxOrOne() int {
	if s.max == 0 {
		return 1
	}
	return s.max
}

// MaxLines returns the current maximum capacity.
func (s *MemoryScrollback) MaxLines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max
}

var _ ScrollbackProvider = (*MemoryScrollback)(nil)
