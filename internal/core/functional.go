// Package core implements the functional combinator module: native
// routines built on the frame/continuation protocol that drive script-level
// callables over sequences without host recursion. They double as the
// reference exercise of the protocol's generality.
package core

import (
	"kestrel/internal/value"
)

// coreEval reduces its single parameter in functional context. The
// parameter arrives unevaluated (eval is eta); the reduction itself may
// suspend arbitrarily deep.
func coreEval(m value.Machine) {
	p := m.Param(0)
	if p == nil {
		m.RaiseParamError("X")
		return
	}
	m.FunctionalEval(*p)
}

// coreLit returns its parameter untouched, interrupting functional
// evaluation the way a quote does.
func coreLit(m value.Machine) {
	p := m.Param(0)
	if p == nil {
		m.RaiseParamError("X")
		return
	}
	m.Retval(*p)
}

// coreFirstOf returns the first truthy parameter, as-is, or nil.
func coreFirstOf(m value.Machine) {
	for i := 0; i < m.ParamCount(); i++ {
		if m.Param(i).IsTrue() {
			m.Retval(*m.Param(i))
			return
		}
	}
	m.RetNil()
}

func coreEq(m value.Machine) {
	first := m.Param(0)
	second := m.Param(1)
	if first == nil || second == nil {
		m.RaiseParamError("X,X")
		return
	}
	m.Retval(value.Bool(value.Equal(*first, *second)))
}

func coreMin(m value.Machine) {
	if m.ParamCount() == 0 {
		m.RetNil()
		return
	}
	best := *m.Param(0)
	for i := 1; i < m.ParamCount(); i++ {
		if value.Compare(*m.Param(i), best) < 0 {
			best = *m.Param(i)
		}
	}
	m.Retval(best)
}

func coreMax(m value.Machine) {
	if m.ParamCount() == 0 {
		m.RetNil()
		return
	}
	best := *m.Param(0)
	for i := 1; i < m.ParamCount(); i++ {
		if value.Compare(*m.Param(i), best) > 0 {
			best = *m.Param(i)
		}
	}
	m.Retval(best)
}

// any evaluates sequence elements in functional context until one is true.
// Local 0 tracks the index of the next element to evaluate.
func coreAny(m value.Machine) {
	p := m.Param(0)
	if p == nil || !p.IsSequence() {
		m.RaiseParamError("A")
		return
	}
	arr, _ := p.AsSeq()

	m.ReturnHandler(coreAnyNext)
	m.AddLocals(1)

	for i := 0; i < arr.Len(); i++ {
		*m.Local(0) = value.Int(int64(i) + 1)
		if m.FunctionalEval(arr.At(i)) {
			return
		}
		if m.RegA().IsTrue() {
			m.ReturnHandler(nil)
			m.Retval(value.Bool(true))
			return
		}
	}

	m.ReturnHandler(nil)
	m.Retval(value.Bool(false))
}

func coreAnyNext(m value.Machine) bool {
	if m.RegA().IsTrue() {
		m.Retval(value.Bool(true))
		return false
	}

	arr, _ := m.Param(0).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64)
	for count < arr.Len() {
		*m.Local(0) = value.Int(int64(count) + 1)
		if m.FunctionalEval(arr.At(count)) {
			return true
		}
		if m.RegA().IsTrue() {
			m.Retval(value.Bool(true))
			return false
		}
		count++
	}

	m.Retval(value.Bool(false))
	return false
}

// all short-circuits on the first false element. An empty sequence yields
// false, matching the long-standing behavior existing call sites rely on.
func coreAll(m value.Machine) {
	p := m.Param(0)
	if p == nil || !p.IsSequence() {
		m.RaiseParamError("A")
		return
	}
	arr, _ := p.AsSeq()
	if arr.Len() == 0 {
		m.Retval(value.Bool(false))
		return
	}

	m.ReturnHandler(coreAllNext)
	m.AddLocals(1)

	for i := 0; i < arr.Len(); i++ {
		*m.Local(0) = value.Int(int64(i) + 1)
		if m.FunctionalEval(arr.At(i)) {
			return
		}
		if !m.RegA().IsTrue() {
			m.ReturnHandler(nil)
			m.Retval(value.Bool(false))
			return
		}
	}

	m.ReturnHandler(nil)
	m.Retval(value.Bool(true))
}

func coreAllNext(m value.Machine) bool {
	if !m.RegA().IsTrue() {
		m.Retval(value.Bool(false))
		return false
	}

	arr, _ := m.Param(0).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64)
	for count < arr.Len() {
		*m.Local(0) = value.Int(int64(count) + 1)
		if m.FunctionalEval(arr.At(count)) {
			return true
		}
		if !m.RegA().IsTrue() {
			m.Retval(value.Bool(false))
			return false
		}
		count++
	}

	m.Retval(value.Bool(true))
	return false
}

// anyp is any over the parameter list itself.
func coreAnyp(m value.Machine) {
	m.ReturnHandler(coreAnypNext)
	m.AddLocals(1)

	for i := 0; i < m.ParamCount(); i++ {
		*m.Local(0) = value.Int(int64(i) + 1)
		if m.FunctionalEval(*m.Param(i)) {
			return
		}
		if m.RegA().IsTrue() {
			m.ReturnHandler(nil)
			m.Retval(value.Bool(true))
			return
		}
	}

	m.ReturnHandler(nil)
	m.Retval(value.Bool(false))
}

func coreAnypNext(m value.Machine) bool {
	if m.RegA().IsTrue() {
		m.Retval(value.Bool(true))
		return false
	}

	count64, _ := m.Local(0).AsInt()
	count := int(count64)
	for count < m.ParamCount() {
		*m.Local(0) = value.Int(int64(count) + 1)
		if m.FunctionalEval(*m.Param(count)) {
			return true
		}
		if m.RegA().IsTrue() {
			m.Retval(value.Bool(true))
			return false
		}
		count++
	}

	m.Retval(value.Bool(false))
	return false
}

// allp is all over the parameter list; no parameters yields false.
func coreAllp(m value.Machine) {
	if m.ParamCount() == 0 {
		m.Retval(value.Bool(false))
		return
	}

	m.ReturnHandler(coreAllpNext)
	m.AddLocals(1)

	for i := 0; i < m.ParamCount(); i++ {
		*m.Local(0) = value.Int(int64(i) + 1)
		if m.FunctionalEval(*m.Param(i)) {
			return
		}
		if !m.RegA().IsTrue() {
			m.ReturnHandler(nil)
			m.Retval(value.Bool(false))
			return
		}
	}

	m.ReturnHandler(nil)
	m.Retval(value.Bool(true))
}

func coreAllpNext(m value.Machine) bool {
	if !m.RegA().IsTrue() {
		m.Retval(value.Bool(false))
		return false
	}

	count64, _ := m.Local(0).AsInt()
	count := int(count64)
	for count < m.ParamCount() {
		*m.Local(0) = value.Int(int64(count) + 1)
		if m.FunctionalEval(*m.Param(count)) {
			return true
		}
		if !m.RegA().IsTrue() {
			m.Retval(value.Bool(false))
			return false
		}
		count++
	}

	m.Retval(value.Bool(true))
	return false
}

// iff evaluates the condition, then exactly one branch, all in functional
// context.
func coreIff(m value.Machine) {
	cond := m.Param(0)
	ifTrue := m.Param(1)
	if cond == nil || ifTrue == nil {
		m.RaiseParamError("X,X,[X]")
		return
	}

	m.ReturnHandler(coreIffNext)
	if m.FunctionalEval(*cond) {
		return
	}
	m.ReturnHandler(nil)

	if m.RegA().IsTrue() {
		m.FunctionalEval(*m.Param(1))
	} else if ifFalse := m.Param(2); ifFalse != nil {
		m.FunctionalEval(*ifFalse)
	} else {
		m.RetNil()
	}
}

func coreIffNext(m value.Machine) bool {
	// one-shot: the branch result must flow out untouched
	m.ReturnHandler(nil)

	if m.RegA().IsTrue() {
		if m.FunctionalEval(*m.Param(1)) {
			return true
		}
	} else if ifFalse := m.Param(2); ifFalse != nil {
		if m.FunctionalEval(*ifFalse) {
			return true
		}
	} else {
		m.RetNil()
	}
	return false
}

// choice evaluates only the selector; the chosen branch is returned as-is.
func coreChoice(m value.Machine) {
	cond := m.Param(0)
	ifTrue := m.Param(1)
	if cond == nil || ifTrue == nil {
		m.RaiseParamError("X,X,[X]")
		return
	}

	m.ReturnHandler(coreChoiceNext)
	if m.FunctionalEval(*cond) {
		return
	}
	m.ReturnHandler(nil)

	if m.RegA().IsTrue() {
		m.Retval(*m.Param(1))
	} else if ifFalse := m.Param(2); ifFalse != nil {
		m.Retval(*ifFalse)
	} else {
		m.RetNil()
	}
}

func coreChoiceNext(m value.Machine) bool {
	if m.RegA().IsTrue() {
		m.Retval(*m.Param(1))
	} else if ifFalse := m.Param(2); ifFalse != nil {
		m.Retval(*ifFalse)
	} else {
		m.RetNil()
	}
	return false
}
