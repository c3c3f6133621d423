package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the payload of a Value. Scalar kinds carry their data
// inline; the remaining kinds reference heap-managed entities owned by the
// collector (the Go runtime).
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindRange
	KindString
	KindSequence
	KindDict
	KindFunc
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindRange:
		return "Range"
	case KindString:
		return "String"
	case KindSequence:
		return "Sequence"
	case KindDict:
		return "Dict"
	case KindFunc:
		return "Func"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// Value is the universal runtime datum: a fixed-size tagged variant. The
// out-of-band bit is orthogonal to the kind; combinators use it to tell
// control signals from ordinary data and strip it independently.
type Value struct {
	kind Kind
	oob  bool
	num  int64   // bool and int payload
	flt  float64 // float payload
	ref  any     // *Range, string, *Sequence, *Dict, *Function, *Ref
}

// Range is the payload of a range value. Open marks an unbounded end.
type Range struct {
	Start int64
	End   int64
	Step  int64
	Open  bool
}

// Ref is an indirection to a value slot, used for by-reference parameters.
// The execution context dereferences it transparently on parameter access.
type Ref struct {
	Target *Value
}

func Nil() Value { return Value{} }

func Bool(b bool) Value {
	var n int64
	if b {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

func Int(n int64) Value { return Value{kind: KindInt, num: n} }

func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

func String(s string) Value { return Value{kind: KindString, ref: s} }

func NewRange(start, end, step int64, open bool) Value {
	return Value{kind: KindRange, ref: &Range{Start: start, End: end, Step: step, Open: open}}
}

func FromSeq(s *Sequence) Value { return Value{kind: KindSequence, ref: s} }

func FromDict(d *Dict) Value { return Value{kind: KindDict, ref: d} }

func FromFunc(f *Function) Value { return Value{kind: KindFunc, ref: f} }

func NewRef(target *Value) Value { return Value{kind: KindRef, ref: &Ref{Target: target}} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool      { return v.kind == KindNil }
func (v Value) IsBool() bool     { return v.kind == KindBool }
func (v Value) IsInt() bool      { return v.kind == KindInt }
func (v Value) IsFloat() bool    { return v.kind == KindFloat }
func (v Value) IsNumeric() bool  { return v.kind == KindInt || v.kind == KindFloat }
func (v Value) IsRange() bool    { return v.kind == KindRange }
func (v Value) IsString() bool   { return v.kind == KindString }
func (v Value) IsSequence() bool { return v.kind == KindSequence }
func (v Value) IsDict() bool     { return v.kind == KindDict }
func (v Value) IsFunc() bool     { return v.kind == KindFunc }
func (v Value) IsRef() bool      { return v.kind == KindRef }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num != 0, true
}

func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.flt, true
}

// Numeric converts int or float payloads to float64.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.num), true
	case KindFloat:
		return v.flt, true
	}
	return 0, false
}

// ForceInt narrows any scalar to an integer: floats truncate toward zero,
// booleans map to 0/1, everything else maps to 0. This is the one documented
// truncating conversion; use AsInt when lossless conversion is required.
func (v Value) ForceInt() int64 {
	switch v.kind {
	case KindInt, KindBool:
		return v.num
	case KindFloat:
		return int64(v.flt)
	}
	return 0
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.ref.(string), true
}

func (v Value) AsRange() (*Range, bool) {
	if v.kind != KindRange {
		return nil, false
	}
	return v.ref.(*Range), true
}

func (v Value) AsSeq() (*Sequence, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.ref.(*Sequence), true
}

func (v Value) AsDict() (*Dict, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	return v.ref.(*Dict), true
}

func (v Value) AsFunc() (*Function, bool) {
	if v.kind != KindFunc {
		return nil, false
	}
	return v.ref.(*Function), true
}

func (v Value) AsRef() (*Ref, bool) {
	if v.kind != KindRef {
		return nil, false
	}
	return v.ref.(*Ref), true
}

// Deref resolves reference chains to the referenced value. Non-reference
// values are returned unchanged.
func (v Value) Deref() Value {
	for v.kind == KindRef {
		v = *v.ref.(*Ref).Target
	}
	return v
}

// IsCallable reports whether the value can be the target of a call: native
// functions are callable, and so is a non-empty sequence whose first element
// is callable (a deferred expression).
func (v Value) IsCallable() bool {
	v = v.Deref()
	for {
		switch v.kind {
		case KindFunc:
			return true
		case KindSequence:
			s := v.ref.(*Sequence)
			if s.Len() == 0 {
				return false
			}
			v = s.At(0).Deref()
		default:
			return false
		}
	}
}

func (v Value) IsOob() bool { return v.oob }

// WithOob returns a copy flagged as out-of-band.
func (v Value) WithOob() Value {
	v.oob = true
	return v
}

// WithoutOob returns a copy with the out-of-band flag stripped.
func (v Value) WithoutOob() Value {
	v.oob = false
	return v
}

// SetOob flags the value in place.
func (v *Value) SetOob() { v.oob = true }

// ResetOob strips the flag in place.
func (v *Value) ResetOob() { v.oob = false }

// IsOobInt reports whether the value is an out-of-band integer equal to n.
// Combinators test this for the break (0) and continue (1) conventions.
func (v Value) IsOobInt(n int64) bool {
	return v.oob && v.kind == KindInt && v.num == n
}

// IsTrue implements the standard truth check: nil is false, numerics are
// false iff zero, strings, sequences and dicts are false iff empty, ranges,
// functions and references are always true.
func (v Value) IsTrue() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool, KindInt:
		return v.num != 0
	case KindFloat:
		return v.flt != 0
	case KindString:
		return len(v.ref.(string)) != 0
	case KindSequence:
		return v.ref.(*Sequence).Len() != 0
	case KindDict:
		return v.ref.(*Dict).Len() != 0
	default:
		return true
	}
}

// Equal reports structural equality. Numerics compare across int/float.
// Sequences compare by length and pairwise elements, dicts by size and
// per-key values with both iterations advanced in lockstep; iteration order
// is irrelevant. The out-of-band flag does not take part in equality.
func Equal(a, b Value) bool {
	a = a.Deref()
	b = b.Deref()

	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.Numeric()
		bf, _ := b.Numeric()
		return af == bf
	}

	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.num == b.num
	case KindString:
		return a.ref.(string) == b.ref.(string)
	case KindRange:
		ra := a.ref.(*Range)
		rb := b.ref.(*Range)
		return ra.Start == rb.Start && ra.End == rb.End && ra.Step == rb.Step && ra.Open == rb.Open
	case KindSequence:
		sa := a.ref.(*Sequence)
		sb := b.ref.(*Sequence)
		if sa == sb {
			return true
		}
		if sa.Len() != sb.Len() {
			return false
		}
		for i := 0; i < sa.Len(); i++ {
			if !Equal(sa.At(i), sb.At(i)) {
				return false
			}
		}
		return true
	case KindDict:
		da := a.ref.(*Dict)
		db := b.ref.(*Dict)
		if da == db {
			return true
		}
		return da.equal(db)
	case KindFunc:
		return a.ref.(*Function) == b.ref.(*Function)
	default:
		return false
	}
}

// Compare orders two values for min/max style operations. Numerics order
// numerically, strings lexicographically; otherwise values order by kind,
// and same-kind incomparable values count as equal.
func Compare(a, b Value) int {
	a = a.Deref()
	b = b.Deref()

	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.Numeric()
		bf, _ := b.Numeric()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	if a.kind == KindString && b.kind == KindString {
		return strings.Compare(a.ref.(string), b.ref.(string))
	}

	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	return 0
}

// Inspect renders the value for diagnostics and host output.
func (v Value) Inspect() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindString:
		return v.ref.(string)
	case KindRange:
		r := v.ref.(*Range)
		if r.Open {
			return fmt.Sprintf("[%d:]", r.Start)
		}
		return fmt.Sprintf("[%d:%d:%d]", r.Start, r.End, r.Step)
	case KindSequence:
		s := v.ref.(*Sequence)
		parts := make([]string, 0, s.Len())
		for i := 0; i < s.Len(); i++ {
			parts = append(parts, s.At(i).Inspect())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindDict:
		return v.ref.(*Dict).inspect()
	case KindFunc:
		f := v.ref.(*Function)
		return "func " + f.Name + "(" + f.Signature + ") { <native> }"
	case KindRef:
		return "<ref " + v.ref.(*Ref).Target.Inspect() + ">"
	default:
		return "<unknown>"
	}
}
