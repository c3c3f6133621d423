package value

import "testing"

func TestHashKeyKinds(t *testing.T) {
	s1, _ := String("a").HashKey()
	s2, _ := String("a").HashKey()
	if s1 != s2 {
		t.Errorf("equal strings should hash alike")
	}

	n1, _ := Int(1).HashKey()
	b1, _ := Bool(true).HashKey()
	if n1 == b1 {
		t.Errorf("int 1 and true must not collide: the kind is part of the key")
	}

	if _, ok := FromSeq(NewSequence()).HashKey(); ok {
		t.Errorf("sequences are not hashable keys")
	}
}

func TestDictPutGetDelete(t *testing.T) {
	d := NewDict()
	if !d.Put(String("k"), Int(1)) {
		t.Fatalf("put failed")
	}
	d.Put(String("k"), Int(2))
	if d.Len() != 1 {
		t.Errorf("overwrite should keep size 1, got %d", d.Len())
	}
	if v, ok := d.Get(String("k")); !ok || v.ForceInt() != 2 {
		t.Errorf("get returned %s", v.Inspect())
	}
	if !d.Delete(String("k")) || d.Len() != 0 {
		t.Errorf("delete failed")
	}
	if d.Delete(String("k")) {
		t.Errorf("deleting an absent key should report false")
	}
	if d.Put(FromSeq(NewSequence()), Int(1)) {
		t.Errorf("unhashable key should report false")
	}
}

func TestDictEquality(t *testing.T) {
	a := NewDict()
	a.Put(String("x"), Int(1))
	a.Put(Int(2), String("two"))

	b := NewDict()
	b.Put(Int(2), String("two"))
	b.Put(String("x"), Int(1))

	if !Equal(FromDict(a), FromDict(b)) {
		t.Errorf("insertion order must not affect equality")
	}

	b.Put(String("x"), Int(9))
	if Equal(FromDict(a), FromDict(b)) {
		t.Errorf("differing values under the same key should break equality")
	}

	c := NewDict()
	c.Put(String("x"), Int(1))
	if Equal(FromDict(a), FromDict(c)) {
		t.Errorf("differing sizes should break equality")
	}
}
