package value

import "testing"

func intsOf(ns ...int64) *Sequence {
	s := NewSequenceSized(len(ns))
	for _, n := range ns {
		s.Append(Int(n))
	}
	return s
}

func wantInts(t *testing.T, s *Sequence, want ...int64) {
	t.Helper()
	if s.Len() != len(want) {
		t.Fatalf("size %d, want %d (%s)", s.Len(), len(want), FromSeq(s).Inspect())
	}
	for i, n := range want {
		if got, _ := s.At(i).AsInt(); got != n {
			t.Fatalf("element %d is %s, want %d", i, s.At(i).Inspect(), n)
		}
	}
}

func TestAppendGrowsByFixedIncrement(t *testing.T) {
	s := NewSequence()
	s.Append(Int(1))
	if s.Cap() != seqGrowth {
		t.Errorf("first growth allocated %d, want %d", s.Cap(), seqGrowth)
	}
	for i := int64(2); i <= seqGrowth+1; i++ {
		s.Append(Int(i))
	}
	if s.Cap() != 2*seqGrowth {
		t.Errorf("second growth allocated %d, want %d", s.Cap(), 2*seqGrowth)
	}
	if s.Len() != seqGrowth+1 {
		t.Errorf("size %d, want %d", s.Len(), seqGrowth+1)
	}
}

func TestPrependAllocatesExact(t *testing.T) {
	s := intsOf(2, 3)
	s.Prepend(Int(1))
	wantInts(t, s, 1, 2, 3)
	if s.Cap() != 3 {
		t.Errorf("prepend allocated %d, want exact 3", s.Cap())
	}
}

func TestMergeAndMergeFront(t *testing.T) {
	s := intsOf(3, 4)
	s.Merge(intsOf(5, 6))
	wantInts(t, s, 3, 4, 5, 6)

	s.MergeFront(intsOf(1, 2))
	wantInts(t, s, 1, 2, 3, 4, 5, 6)

	empty := NewSequence()
	s.Merge(empty)
	s.MergeFront(empty)
	wantInts(t, s, 1, 2, 3, 4, 5, 6)
}

func TestInsertPositions(t *testing.T) {
	s := intsOf(1, 3)
	if !s.Insert(Int(2), 1) {
		t.Fatalf("insert at 1 failed")
	}
	wantInts(t, s, 1, 2, 3)

	if !s.Insert(Int(4), 3) {
		t.Fatalf("insert at size failed")
	}
	wantInts(t, s, 1, 2, 3, 4)

	if !s.Insert(Int(0), -4) {
		t.Fatalf("negative insert failed")
	}
	wantInts(t, s, 0, 1, 2, 3, 4)

	if s.Insert(Int(9), 17) {
		t.Errorf("out-of-bounds insert should report false")
	}
	wantInts(t, s, 0, 1, 2, 3, 4)
}

func TestRemoveRange(t *testing.T) {
	s := intsOf(1, 2, 3, 4, 5)
	if !s.RemoveRange(1, 3) {
		t.Fatalf("remove [1,3) failed")
	}
	wantInts(t, s, 1, 4, 5)
}

func TestRemoveRangeReversedBounds(t *testing.T) {
	// a reversed range swaps bounds and includes the original first element
	s := intsOf(1, 2, 3, 4, 5)
	if !s.RemoveRange(3, 1) {
		t.Fatalf("reversed remove failed")
	}
	wantInts(t, s, 1, 5)
}

func TestChangeSplice(t *testing.T) {
	s := intsOf(1, 2, 3, 4, 5)
	if !s.Change(intsOf(9, 9, 9, 9), 1, 3) {
		t.Fatalf("grow splice failed")
	}
	wantInts(t, s, 1, 9, 9, 9, 9, 4, 5)

	if !s.Change(intsOf(0), 1, 5) {
		t.Fatalf("shrink splice failed")
	}
	wantInts(t, s, 1, 0, 4, 5)

	if !s.Change(NewSequence(), 1, 2) {
		t.Fatalf("deletion splice failed")
	}
	wantInts(t, s, 1, 4, 5)
}

func TestPartitionForward(t *testing.T) {
	s := intsOf(10, 20, 30, 40)
	part, ok := s.Partition(1, 3)
	if !ok {
		t.Fatalf("partition failed")
	}
	wantInts(t, part, 20, 30)

	empty, ok := s.Partition(2, 2)
	if !ok || empty.Len() != 0 {
		t.Fatalf("equal bounds should yield an empty sequence")
	}
}

func TestPartitionReversedIsInclusive(t *testing.T) {
	// end < start walks backwards and keeps both bounds
	s := intsOf(10, 20, 30, 40)
	part, ok := s.Partition(3, 1)
	if !ok {
		t.Fatalf("reversed partition failed")
	}
	wantInts(t, part, 40, 30, 20)
}

func TestPartitionBounds(t *testing.T) {
	s := intsOf(1, 2, 3)
	if _, ok := s.Partition(3, 1); ok {
		t.Errorf("start at size should report false")
	}
	if _, ok := s.Partition(0, 4); ok {
		t.Errorf("end past size should report false")
	}
	part, ok := s.Partition(-2, -1)
	if !ok {
		t.Fatalf("negative positions failed")
	}
	wantInts(t, part, 2)
}

func TestFind(t *testing.T) {
	s := intsOf(5, 6, 7)
	if got := s.Find(Float(6.0)); got != 1 {
		t.Errorf("Find(6.0) = %d, want 1 (structural equality)", got)
	}
	if got := s.Find(Int(9)); got != -1 {
		t.Errorf("Find(9) = %d, want -1", got)
	}
}

func TestResizeAndCompact(t *testing.T) {
	s := intsOf(1, 2)
	s.Resize(4)
	if s.Len() != 4 || !s.At(2).IsNil() || !s.At(3).IsNil() {
		t.Fatalf("grown slots should be nil: %s", FromSeq(s).Inspect())
	}
	if s.Cap()%seqGrowth != 0 {
		t.Errorf("resize allocation %d not rounded to growth multiple", s.Cap())
	}

	s.Resize(1)
	wantInts(t, s, 1)

	s.Compact()
	if s.Cap() != 1 {
		t.Errorf("compact kept capacity %d, want 1", s.Cap())
	}
}

func TestCopyOnto(t *testing.T) {
	s := intsOf(1, 2, 3)
	if !s.CopyOnto(2, intsOf(8, 9), 0, 2) {
		t.Fatalf("copy past the tail failed")
	}
	wantInts(t, s, 1, 2, 8, 9)
}

func TestCloneIsIndependent(t *testing.T) {
	s := intsOf(1, 2)
	c := s.Clone()
	c.Set(0, Int(9))
	wantInts(t, s, 1, 2)
	wantInts(t, c, 9, 2)
}
