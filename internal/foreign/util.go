package foreign

import (
	"kestrel/internal/value"
)

func unpackString(m value.Machine, i int) (string, bool) {
	p := m.Param(i)
	if p == nil {
		return "", false
	}
	s, ok := p.AsString()
	return s, ok
}

func unpackHandle(m value.Machine, i int) (int64, bool) {
	p := m.Param(i)
	if p == nil || !p.IsNumeric() {
		return 0, false
	}
	return p.ForceInt(), true
}

// driverValue converts a runtime value into something database/sql can bind.
// Scalars map directly; anything structured falls back to its rendered form.
func driverValue(v value.Value) any {
	v = v.Deref()
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		b, _ := v.AsBool()
		return b
	case v.IsInt():
		n, _ := v.AsInt()
		return n
	case v.IsFloat():
		f, _ := v.AsFloat()
		return f
	case v.IsString():
		s, _ := v.AsString()
		return s
	default:
		return v.Inspect()
	}
}
