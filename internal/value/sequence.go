package value

// seqGrowth is the fixed capacity increment used when a full buffer needs
// room for more elements. Growth is linear, not geometric, bounding
// reallocation waste on large buffers at the price of more frequent copies.
const seqGrowth = 32

// Sequence owns a contiguous, growable buffer of Values. It backs
// script-level arrays and the accumulators of the functional combinators.
// The logical size never exceeds the allocated capacity, and slots past the
// size are never exposed. Elements are shallow-copied in and out; heap data
// they reference stays alive as long as any copy does.
//
// Positional operations accept negative indices addressing from the end
// (-1 is the last element) and report bounds violations by returning false
// without mutating the buffer.
type Sequence struct {
	data []Value
}

func NewSequence() *Sequence { return &Sequence{} }

// NewSequenceSized returns an empty sequence with room for prealloc
// elements.
func NewSequenceSized(prealloc int) *Sequence {
	if prealloc <= 0 {
		return &Sequence{}
	}
	return &Sequence{data: make([]Value, 0, prealloc)}
}

// SequenceOf builds a sequence holding the given values.
func SequenceOf(vs ...Value) *Sequence {
	s := NewSequenceSized(len(vs))
	s.data = s.data[:len(vs)]
	copy(s.data, vs)
	return s
}

func (s *Sequence) Len() int { return len(s.data) }

// Cap exposes the allocated capacity so growth policy stays observable.
func (s *Sequence) Cap() int { return cap(s.data) }

// At returns the element at a valid non-negative index. The caller checks
// the index against Len; use Get for validated, sign-aware access.
func (s *Sequence) At(i int) Value { return s.data[i] }

// Set overwrites the element at a valid non-negative index.
func (s *Sequence) Set(i int, v Value) { s.data[i] = v }

// Get resolves a possibly negative position and returns the element there.
func (s *Sequence) Get(pos int) (Value, bool) {
	if pos < 0 {
		pos += len(s.data)
	}
	if pos < 0 || pos >= len(s.data) {
		return Value{}, false
	}
	return s.data[pos], true
}

// Append adds v at the tail, growing the buffer by the fixed increment when
// full.
func (s *Sequence) Append(v Value) {
	if len(s.data) == cap(s.data) {
		grown := make([]Value, len(s.data), len(s.data)+seqGrowth)
		copy(grown, s.data)
		s.data = grown
	}
	s.data = append(s.data, v)
}

// Prepend adds v at the head. The whole buffer shifts right, so this is
// O(n); the new allocation is exact (size+1).
func (s *Sequence) Prepend(v Value) {
	grown := make([]Value, len(s.data)+1)
	grown[0] = v
	copy(grown[1:], s.data)
	s.data = grown
}

// Merge appends the full contents of other. Allocation is exact.
func (s *Sequence) Merge(other *Sequence) {
	if other.Len() == 0 {
		return
	}
	need := len(s.data) + len(other.data)
	if cap(s.data) < need {
		grown := make([]Value, len(s.data), need)
		copy(grown, s.data)
		s.data = grown
	}
	s.data = append(s.data, other.data...)
}

// MergeFront inserts the full contents of other at the head.
func (s *Sequence) MergeFront(other *Sequence) {
	if other.Len() == 0 {
		return
	}
	need := len(s.data) + len(other.data)
	if cap(s.data) < need {
		grown := make([]Value, need)
		copy(grown, other.data)
		copy(grown[len(other.data):], s.data)
		s.data = grown
		return
	}
	s.data = s.data[:need]
	copy(s.data[len(other.data):], s.data[:need-len(other.data)])
	copy(s.data, other.data)
}

// Insert places v at pos, shifting the tail right. pos may be negative;
// it must resolve inside [0, size].
func (s *Sequence) Insert(v Value, pos int) bool {
	if pos < 0 {
		pos += len(s.data)
	}
	if pos < 0 || pos > len(s.data) {
		return false
	}

	if len(s.data) == cap(s.data) {
		grown := make([]Value, len(s.data)+1, len(s.data)+seqGrowth)
		copy(grown, s.data[:pos])
		copy(grown[pos+1:], s.data[pos:])
		grown[pos] = v
		s.data = grown
		return true
	}

	s.data = s.data[:len(s.data)+1]
	copy(s.data[pos+1:], s.data[pos:len(s.data)-1])
	s.data[pos] = v
	return true
}

// InsertAll places the contents of other at pos. Allocation is exact.
func (s *Sequence) InsertAll(other *Sequence, pos int) bool {
	if other.Len() == 0 {
		return true
	}
	if pos < 0 {
		pos += len(s.data)
	}
	if pos < 0 || pos > len(s.data) {
		return false
	}

	need := len(s.data) + len(other.data)
	if cap(s.data) < need {
		grown := make([]Value, need)
		copy(grown, s.data[:pos])
		copy(grown[pos:], other.data)
		copy(grown[pos+len(other.data):], s.data[pos:])
		s.data = grown
		return true
	}

	s.data = s.data[:need]
	copy(s.data[pos+len(other.data):], s.data[pos:need-len(other.data)])
	copy(s.data[pos:], other.data)
	return true
}

// InsertSpace opens size nil-filled slots at pos.
func (s *Sequence) InsertSpace(pos, size int) bool {
	if size == 0 {
		return true
	}
	if pos < 0 {
		pos += len(s.data)
	}
	if pos < 0 || pos > len(s.data) {
		return false
	}

	need := len(s.data) + size
	if cap(s.data) < need {
		grown := make([]Value, need, roundGrowth(need))
		copy(grown, s.data[:pos])
		copy(grown[pos+size:], s.data[pos:])
		s.data = grown
	} else {
		s.data = s.data[:need]
		copy(s.data[pos+size:], s.data[pos:need-size])
		for i := pos; i < pos+size; i++ {
			s.data[i] = Value{}
		}
	}
	return true
}

// Remove drops the element at first.
func (s *Sequence) Remove(first int) bool {
	if first < 0 {
		first += len(s.data)
	}
	if first < 0 || first >= len(s.data) {
		return false
	}
	copy(s.data[first:], s.data[first+1:])
	s.data = s.data[:len(s.data)-1]
	return true
}

// RemoveRange drops the half-open range [first, last). A reversed range is
// normalized by swapping the bounds and treating the end as its inclusive
// successor.
func (s *Sequence) RemoveRange(first, last int) bool {
	if first < 0 {
		first += len(s.data)
	}
	if first < 0 || first >= len(s.data) {
		return false
	}
	if last < 0 {
		last += len(s.data)
	}
	if last < 0 || last > len(s.data) {
		return false
	}
	if first > last {
		first, last = last, first+1
	}

	copy(s.data[first:], s.data[last:])
	s.data = s.data[:len(s.data)-(last-first)]
	return true
}

// Change replaces the [begin, end) slice with the full contents of other.
// This is the general splice primitive; insertion and deletion reduce to it.
// A reversed range is normalized the same way RemoveRange does.
func (s *Sequence) Change(other *Sequence, begin, end int) bool {
	if begin < 0 {
		begin += len(s.data)
	}
	if begin < 0 || begin > len(s.data) {
		return false
	}
	if end < 0 {
		end += len(s.data)
	}
	if end < 0 || end > len(s.data) {
		return false
	}
	if begin > end {
		begin, end = end, begin+1
	}

	removed := end - begin
	need := len(s.data) - removed + other.Len()
	if need > cap(s.data) {
		grown := make([]Value, need)
		copy(grown, s.data[:begin])
		copy(grown[begin:], other.data)
		copy(grown[begin+other.Len():], s.data[end:])
		s.data = grown
		return true
	}

	tail := len(s.data) - end
	buf := s.data[:cap(s.data)]
	copy(buf[begin+other.Len():begin+other.Len()+tail], buf[end:end+tail])
	copy(buf[begin:], other.data)
	s.data = buf[:need]
	return true
}

// Partition extracts a sub-sequence. With end < start the result is the
// reversed inclusive sub-range [end, start]; this reversal on negative
// direction is deliberate, not an error path. With end == start the result
// is empty.
func (s *Sequence) Partition(start, end int) (*Sequence, bool) {
	if start < 0 {
		start += len(s.data)
	}
	if start < 0 || start >= len(s.data) {
		return nil, false
	}
	if end < 0 {
		end += len(s.data)
	}
	if end < 0 || end > len(s.data) {
		return nil, false
	}

	if end < start {
		size := start - end + 1
		out := make([]Value, size)
		for i := 0; i < size; i++ {
			out[i] = s.data[start-i]
		}
		return &Sequence{data: out}, true
	}
	if end == start {
		return NewSequence(), true
	}
	out := make([]Value, end-start)
	copy(out, s.data[start:end])
	return &Sequence{data: out}, true
}

// Find scans for the first element structurally equal to v and returns its
// index, or -1 when absent.
func (s *Sequence) Find(v Value) int {
	for i := range s.data {
		if Equal(v, s.data[i]) {
			return i
		}
	}
	return -1
}

// Resize forces the logical size, zero-filling grown slots. Shrinking to
// zero releases the buffer.
func (s *Sequence) Resize(size int) {
	if size == 0 {
		s.data = nil
		return
	}
	if size > cap(s.data) {
		grown := make([]Value, size, roundGrowth(size))
		copy(grown, s.data)
		s.data = grown
		return
	}
	if size > len(s.data) {
		old := len(s.data)
		s.data = s.data[:size]
		for i := old; i < size; i++ {
			s.data[i] = Value{}
		}
		return
	}
	s.data = s.data[:size]
}

// Compact trims the allocation down to the logical size.
func (s *Sequence) Compact() {
	if len(s.data) == 0 {
		s.data = nil
		return
	}
	if len(s.data) < cap(s.data) {
		trimmed := make([]Value, len(s.data))
		copy(trimmed, s.data)
		s.data = trimmed
	}
}

// Reserve guarantees capacity for at least size elements.
func (s *Sequence) Reserve(size int) {
	if size > cap(s.data) {
		grown := make([]Value, len(s.data), size)
		copy(grown, s.data)
		s.data = grown
	}
}

// CopyOnto overwrites elements starting at from with up to amount elements
// of src beginning at first, growing the sequence when the copy runs past
// the current size.
func (s *Sequence) CopyOnto(from int, src *Sequence, first, amount int) bool {
	if first > src.Len() {
		return false
	}
	if first+amount > src.Len() {
		amount = src.Len() - first
	}
	if from > len(s.data) {
		return false
	}
	if from+amount > len(s.data) {
		s.Resize(from + amount)
	}
	copy(s.data[from:], src.data[first:first+amount])
	return true
}

// Clone returns a deep copy of the buffer; elements are shallow-copied.
func (s *Sequence) Clone() *Sequence {
	if len(s.data) == 0 {
		return NewSequence()
	}
	out := make([]Value, len(s.data))
	copy(out, s.data)
	return &Sequence{data: out}
}

// roundGrowth rounds need up to the next multiple of the growth increment.
func roundGrowth(need int) int {
	return (need/seqGrowth + 1) * seqGrowth
}
