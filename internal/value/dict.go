package value

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"
)

// DictKey is the hashed form of a dictionary key: the key's kind plus a
// 64-bit content sum. Only scalar kinds and strings are hashable.
type DictKey struct {
	Kind Kind
	Sum  uint64
}

type DictPair struct {
	Key   Value
	Value Value
}

// Dict is the mapping entity behind dictionary values. Iteration order is
// unspecified and never takes part in equality.
type Dict struct {
	pairs map[DictKey]DictPair
}

func NewDict() *Dict { return &Dict{} }

// HashKey reduces a value to its dictionary key form. Nil, booleans,
// numerics and strings are hashable; everything else reports false.
func (v Value) HashKey() (DictKey, bool) {
	switch v.kind {
	case KindNil:
		return DictKey{Kind: KindNil}, true
	case KindBool, KindInt:
		return DictKey{Kind: v.kind, Sum: uint64(v.num)}, true
	case KindFloat:
		return DictKey{Kind: KindFloat, Sum: math.Float64bits(v.flt)}, true
	case KindString:
		h := fnv.New64a()
		h.Write([]byte(v.ref.(string)))
		return DictKey{Kind: KindString, Sum: h.Sum64()}, true
	}
	return DictKey{}, false
}

func (d *Dict) Len() int { return len(d.pairs) }

// Put stores v under k, reporting false for unhashable keys.
func (d *Dict) Put(k, v Value) bool {
	key, ok := k.HashKey()
	if !ok {
		return false
	}
	if d.pairs == nil {
		d.pairs = map[DictKey]DictPair{}
	}
	d.pairs[key] = DictPair{Key: k, Value: v}
	return true
}

func (d *Dict) Get(k Value) (Value, bool) {
	key, ok := k.HashKey()
	if !ok {
		return Value{}, false
	}
	pair, ok := d.pairs[key]
	return pair.Value, ok
}

func (d *Dict) Delete(k Value) bool {
	key, ok := k.HashKey()
	if !ok {
		return false
	}
	if _, present := d.pairs[key]; !present {
		return false
	}
	delete(d.pairs, key)
	return true
}

// Pairs returns a snapshot of the stored pairs.
func (d *Dict) Pairs() []DictPair {
	out := make([]DictPair, 0, len(d.pairs))
	for _, p := range d.pairs {
		out = append(out, p)
	}
	return out
}

// equal walks both dictionaries in lockstep: same size, and for every key
// in d the other dictionary holds a structurally equal key and value.
func (d *Dict) equal(other *Dict) bool {
	if len(d.pairs) != len(other.pairs) {
		return false
	}
	for key, pair := range d.pairs {
		otherPair, ok := other.pairs[key]
		if !ok {
			return false
		}
		if !Equal(pair.Key, otherPair.Key) || !Equal(pair.Value, otherPair.Value) {
			return false
		}
	}
	return true
}

func (d *Dict) inspect() string {
	parts := make([]string, 0, len(d.pairs))
	for _, pair := range d.pairs {
		parts = append(parts, pair.Key.Inspect()+": "+pair.Value.Inspect())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
