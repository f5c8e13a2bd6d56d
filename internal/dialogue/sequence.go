package dialogue

// Question is one slot prompt. Skip, when set, reports whether the slot is
// bypassed for the given context.
type Question[C any] struct {
	Prompt string
	Skip   func(c *C) bool
}

// Sequence is the ordered list of slot questions of one domain.
type Sequence[C any] []Question[C]

// Prompt returns the question text at index i. It reports false when i is
// out of range or the slot is skipped for c.
func (s Sequence[C]) Prompt(i int, c *C) (string, bool) {
	if i < 0 || i >= len(s) {
		return "", false
	}
	q := s[i]
	if q.Skip != nil && q.Skip(c) {
		return "", false
	}
	return q.Prompt, true
}

// Next returns the index of the first slot after i that is not skipped for
// c, or len(s) when the sequence is complete.
func (s Sequence[C]) Next(i int, c *C) int {
	for j := i + 1; j < len(s); j++ {
		if s[j].Skip == nil || !s[j].Skip(c) {
			return j
		}
	}
	return len(s)
}

// Done reports whether no slot remains after i.
func (s Sequence[C]) Done(i int, c *C) bool {
	return s.Next(i, c) >= len(s)
}
