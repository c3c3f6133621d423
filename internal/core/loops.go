package core

import (
	"kestrel/internal/value"
	"kestrel/internal/vm"
)

// map calls the mapper once per element and collects the results. A result
// carrying the out-of-band flag is dropped instead of collected.
//
// Locals: 0 index of the next element, 1 the output sequence.
func coreMap(m value.Machine) {
	callable := m.Param(0)
	org := m.Param(1)
	if callable == nil || !callable.IsCallable() || org == nil || !org.IsSequence() {
		m.RaiseParamError("C,A")
		return
	}

	origin, _ := org.AsSeq()
	mapped := value.NewSequenceSized(origin.Len())
	if origin.Len() > 0 {
		m.ReturnHandler(coreMapNext)
		m.AddLocals(2)
		*m.Local(0) = value.Int(1)
		*m.Local(1) = value.FromSeq(mapped)

		m.PushParameter(origin.At(0))
		m.CallFrame(*m.Param(0), 1)
		return
	}

	m.Retval(value.FromSeq(mapped))
}

func coreMapNext(m value.Machine) bool {
	origin, _ := m.Param(1).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64)
	mapped, _ := m.Local(1).AsSeq()

	if !m.RegA().IsOob() {
		mapped.Append(*m.RegA())
	}

	if count < origin.Len() {
		*m.Local(0) = value.Int(int64(count) + 1)
		m.PushParameter(origin.At(count))
		m.CallFrame(*m.Param(0), 1)
		return true
	}

	m.Retval(value.FromSeq(mapped))
	return false
}

// xmap is map with an extra twist: every element is functionally evaluated
// before being handed to the mapper.
//
// Locals: 0 index, 1 output, 2 phase (0 after an element evaluation, 1
// after a mapper call).
func coreXmap(m value.Machine) {
	callable := m.Param(0)
	org := m.Param(1)
	if callable == nil || !callable.IsCallable() || org == nil || !org.IsSequence() {
		m.RaiseParamError("C,A")
		return
	}

	origin, _ := org.AsSeq()
	mapped := value.NewSequenceSized(origin.Len())
	if origin.Len() > 0 {
		m.ReturnHandler(coreXmapNext)
		m.AddLocals(3)
		*m.Local(0) = value.Int(1)
		*m.Local(1) = value.FromSeq(mapped)
		*m.Local(2) = value.Int(0)

		if m.FunctionalEval(origin.At(0)) {
			return
		}

		*m.Local(2) = value.Int(1)
		m.PushParameter(*m.RegA())
		m.CallFrame(*m.Param(0), 1)
		return
	}

	m.Retval(value.FromSeq(mapped))
}

func coreXmapNext(m value.Machine) bool {
	origin, _ := m.Param(1).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64)
	mapped, _ := m.Local(1).AsSeq()

	if count < origin.Len() {
		phase, _ := m.Local(2).AsInt()
		if phase == 1 {
			if !m.RegA().IsOob() {
				mapped.Append(*m.RegA())
			}

			*m.Local(0) = value.Int(int64(count) + 1)
			*m.Local(2) = value.Int(0)
			if m.FunctionalEval(origin.At(count)) {
				return true
			}
		}

		*m.Local(2) = value.Int(1)
		m.PushParameter(*m.RegA())
		m.CallFrame(*m.Param(0), 1)
		return true
	}

	if !m.RegA().IsOob() {
		mapped.Append(*m.RegA())
	}

	m.Retval(value.FromSeq(mapped))
	return false
}

// filter keeps the original elements whose predicate call returns true.
// Elements are passed literally, never evaluated.
//
// Locals: 0 the output sequence, 1 index.
func coreFilter(m value.Machine) {
	callable := m.Param(0)
	org := m.Param(1)
	if callable == nil || !callable.IsCallable() || org == nil || !org.IsSequence() {
		m.RaiseParamError("C,A")
		return
	}

	origin, _ := org.AsSeq()
	mapped := value.NewSequenceSized(origin.Len() / 2)
	if origin.Len() > 0 {
		m.ReturnHandler(coreFilterNext)
		m.AddLocals(2)
		*m.Local(0) = value.FromSeq(mapped)
		*m.Local(1) = value.Int(1)

		m.PushParameter(origin.At(0))
		m.CallFrame(*m.Param(0), 1)
		return
	}

	m.Retval(value.FromSeq(mapped))
}

func coreFilterNext(m value.Machine) bool {
	origin, _ := m.Param(1).AsSeq()
	mapped, _ := m.Local(0).AsSeq()
	count64, _ := m.Local(1).AsInt()
	count := int(count64)

	if m.RegA().IsTrue() {
		mapped.Append(origin.At(count - 1))
	}

	if count == origin.Len() {
		m.Retval(value.FromSeq(mapped))
		return false
	}

	*m.Local(1) = value.Int(int64(count) + 1)
	m.PushParameter(origin.At(count))
	m.CallFrame(*m.Param(0), 1)
	return true
}

// reduce folds the sequence through a two-parameter reductor. With an
// initial value the fold starts there; without one the first two elements
// seed it, a single element is returned untouched and an empty sequence
// yields the initial value or nil.
//
// Local 0 is the index of the next element to fold in.
func coreReduce(m value.Machine) {
	callable := m.Param(0)
	org := m.Param(1)
	init := m.Param(2)
	if callable == nil || !callable.IsCallable() || org == nil || !org.IsSequence() {
		m.RaiseParamError("C,A,[X]")
		return
	}

	origin, _ := org.AsSeq()
	m.AddLocals(1)

	if init != nil {
		if origin.Len() == 0 {
			m.Retval(*init)
			return
		}

		m.ReturnHandler(coreReduceNext)
		*m.Local(0) = value.Int(1)
		m.PushParameter(*init)
		m.PushParameter(origin.At(0))
		m.CallFrame(*m.Param(0), 2)
		return
	}

	switch origin.Len() {
	case 0:
		m.RetNil()
	case 1:
		m.Retval(origin.At(0))
	default:
		m.ReturnHandler(coreReduceNext)
		*m.Local(0) = value.Int(2)
		m.PushParameter(origin.At(0))
		m.PushParameter(origin.At(1))
		m.CallFrame(*m.Param(0), 2)
	}
}

func coreReduceNext(m value.Machine) bool {
	origin, _ := m.Param(1).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64)

	// the last call's result is already the fold result
	if count >= origin.Len() {
		return false
	}

	*m.Local(0) = value.Int(int64(count) + 1)
	m.PushParameter(*m.RegA())
	m.PushParameter(origin.At(count))
	m.CallFrame(*m.Param(0), 2)
	return true
}

// dolist feeds the sequence's elements to the processor one at a time,
// functionally evaluating each element first but never building an output
// sequence. A processor returning false stops the run.
//
// Locals: 0 index, 1 phase (0 resuming from an element evaluation, 1 from
// a processor call).
func coreDolist(m value.Machine) {
	callable := m.Param(0)
	org := m.Param(1)
	if callable == nil || !callable.IsCallable() || org == nil || !org.IsSequence() {
		m.RaiseParamError("C,A")
		return
	}

	origin, _ := org.AsSeq()
	if origin.Len() == 0 {
		return
	}

	m.ReturnHandler(coreDolistNext)
	m.AddLocals(2)
	*m.Local(0) = value.Int(0)
	*m.Local(1) = value.Int(0)

	if m.FunctionalEval(origin.At(0)) {
		return
	}

	*m.Local(0) = value.Int(1)
	*m.Local(1) = value.Int(1)
	m.PushParameter(*m.RegA())
	m.CallFrame(*m.Param(0), 1)
}

func coreDolistNext(m value.Machine) bool {
	origin, _ := m.Param(1).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64)

	// done; the register keeps the last processor result
	if count >= origin.Len() {
		return false
	}

	phase, _ := m.Local(1).AsInt()
	if phase == 1 {
		if !m.RegA().IsTrue() {
			return false
		}

		*m.Local(1) = value.Int(0)
		if m.FunctionalEval(origin.At(count)) {
			return true
		}
	}

	*m.Local(0) = value.Int(int64(count) + 1)
	*m.Local(1) = value.Int(1)
	m.PushParameter(*m.RegA())
	m.CallFrame(*m.Param(0), 1)
	return true
}

// times repeats the sequence of callables once per index of the counting
// range, passing (or writing) the current index as each element dictates.
// An out-of-band 1 from an element restarts the sequence at the next
// index; an out-of-band 0 ends the loop and yields the index it broke at.
// Running the range out yields the range end.
//
// Locals: 0 the shifting counter range, 1 the position inside the
// sequence.
func coreTimes(m value.Machine) {
	iCount := m.Param(0)
	iVar := m.Param(1)
	iSeq := m.Param(2)
	if iCount == nil || !(iCount.IsRange() || iCount.IsNumeric()) ||
		iVar == nil || !(m.IsParamByRef(1) || iVar.IsNil() || iVar.IsNumeric()) ||
		iSeq == nil || !iSeq.IsSequence() {
		m.RaiseParamError("N|R,$|Nil|N,A")
		return
	}

	var start, end, step int64
	if rng, ok := iCount.AsRange(); ok {
		if rng.Open {
			m.RaiseParamError("open range")
			return
		}
		start, end, step = rng.Start, rng.End, rng.Step
		if step == 0 {
			if start > end {
				step = -1
			} else {
				step = 1
			}
		}
	} else {
		start = 0
		end = iCount.ForceInt()
		step = 1
		if end < 0 {
			step = -1
		}
	}

	sequence, _ := iSeq.AsSeq()

	// nothing to loop over
	if start == end ||
		(start < end && (step < 0 || start+step > end)) ||
		(start > end && (step > 0 || start+step < end)) ||
		sequence.Len() == 0 {
		m.Retval(value.Int(start))
		return
	}

	m.ReturnHandler(coreTimesNext)
	m.AddLocals(2)
	*m.Local(0) = value.NewRange(start, end, step, false)
	*m.Local(1) = value.Int(0)

	// a dirty register would read as a stray break/continue signal
	m.RetNil()

	if m.IsParamByRef(1) {
		*m.Param(1) = value.Int(start)
	}

	// the scheduler drives coreTimesNext from here on
}

func coreTimesNext(m value.Machine) bool {
	// the by-ref counter parameter gets overwritten below; copy first
	varItem := *m.Param(1)
	sequence, _ := m.Param(2).AsSeq()
	rng, _ := m.Local(0).AsRange()
	start := rng.Start
	itemID64, _ := m.Local(1).AsInt()
	itemID := int(itemID64)

	// anticipated termination keeps the index it was signalled at
	if m.RegA().IsOobInt(0) {
		m.Retval(value.Int(start))
		return false
	}

	// sequence exhausted, or an element asked to restart it
	if itemID == sequence.Len() || m.RegA().IsOobInt(1) {
		itemID = 0
		start += rng.Step
		if m.IsParamByRef(1) {
			*m.Param(1) = value.Int(start)
		}
		rng.Start = start
	}

	if (rng.Step > 0 && start >= rng.End) || (rng.Step < 0 && start < rng.End) {
		m.Retval(value.Int(rng.End))
		return false
	}

	current := sequence.At(itemID)
	*m.Local(1) = value.Int(int64(itemID) + 1)

	if !current.IsCallable() {
		m.RaiseError(vm.ErrNonCallable, "%s", current.Inspect())
		return false
	}

	if m.IsParamByRef(1) {
		// the element reads the counter through the reference
		m.CallFrame(current, 0)
		return true
	}

	if curSeq, ok := current.Deref().AsSeq(); ok {
		varID := varItem.ForceInt()
		if varID <= 0 {
			// append the index as the trailing parameter
			for i := 1; i < curSeq.Len(); i++ {
				m.PushParameter(curSeq.At(i))
			}
			m.PushParameter(value.Int(start))
			m.CallFrame(curSeq.At(0), curSeq.Len())
		} else {
			// overwrite the requested slot; too-short elements are
			// called untouched
			if curSeq.Len() > int(varID) {
				curSeq.Set(int(varID), value.Int(start))
			}
			m.CallFrame(current, 0)
		}
		return true
	}

	m.PushParameter(value.Int(start))
	m.CallFrame(current, 1)
	return true
}

// cascade chains the callables so each receives the previous result as its
// sole parameter; the first receives cascade's own extra parameters. A
// callable declines by returning an out-of-band value: its result is
// dropped and the next call sees the last accepted value, or the original
// parameters when nothing was accepted yet.
//
// Locals: 0 index, 1 last accepted result (out-of-band until one exists).
func coreCascade(m value.Machine) {
	iCallables := m.Param(0)
	if iCallables == nil || !iCallables.IsSequence() {
		m.RaiseParamError("A,...")
		return
	}

	callables, _ := iCallables.AsSeq()
	if callables.Len() == 0 {
		m.RetNil()
		return
	}

	m.AddLocals(2)
	*m.Local(0) = value.Int(1)
	m.Local(1).SetOob()

	pcount := m.ParamCount()
	for pi := 1; pi < pcount; pi++ {
		m.PushParameter(*m.Param(pi))
	}

	m.ReturnHandler(coreCascadeNext)

	if !m.CallFrame(callables.At(0), pcount-1) {
		m.RaiseError(vm.ErrNonCallable, "%s", callables.At(0).Inspect())
	}
}

func coreCascadeNext(m value.Machine) bool {
	callables, _ := m.Param(0).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64)

	if count >= callables.Len() {
		if m.RegA().IsOob() {
			// last call declined: surface the last accepted result
			res := *m.Local(1)
			res.ResetOob()
			m.Retval(res)
		}
		return false
	}

	var pc int
	if m.RegA().IsOob() {
		if m.Local(1).IsOob() {
			// nothing accepted yet: replay the original parameters
			pcount := m.ParamCount()
			for pi := 1; pi < pcount; pi++ {
				m.PushParameter(*m.Param(pi))
			}
			pc = pcount - 1
		} else {
			pc = 1
			m.PushParameter(*m.Local(1))
		}
	} else {
		*m.Local(1) = *m.RegA()
		pc = 1
		m.PushParameter(*m.RegA())
	}

	*m.Local(0) = value.Int(int64(count) + 1)

	if !m.CallFrame(callables.At(count), pc) {
		m.RaiseError(vm.ErrNonCallable, "%s", callables.At(count).Inspect())
		return false
	}

	return true
}

// floop cycles through the callables forever: after the last element the
// first runs again. An out-of-band 0 breaks the loop, an out-of-band 1
// restarts it from the first element. Elements must be callable.
//
// Local 0 is the position of the element that just ran.
func coreFloop(m value.Machine) {
	iCallables := m.Param(0)
	if iCallables == nil || !iCallables.IsSequence() {
		m.RaiseParamError("A")
		return
	}

	callables, _ := iCallables.AsSeq()
	if callables.Len() == 0 {
		return
	}

	m.AddLocals(1)
	// one past the end, so the first advance wraps to element zero
	*m.Local(0) = value.Int(int64(callables.Len()))

	m.ReturnHandler(coreFloopNext)

	// a dirty register would read as a stray break/continue signal
	m.RetNil()
}

func coreFloopNext(m value.Machine) bool {
	callables, _ := m.Param(0).AsSeq()
	count64, _ := m.Local(0).AsInt()
	count := int(count64) + 1

	if m.RegA().IsOobInt(0) {
		m.ReturnHandler(nil)
		m.RetNil()
		return false
	}
	if m.RegA().IsOobInt(1) {
		count = 0
	}

	if count >= callables.Len() {
		count = 0
	}

	*m.Local(0) = value.Int(int64(count))
	if !m.CallFrame(callables.At(count), 0) {
		m.RaiseError(vm.ErrNonCallable, "%s", callables.At(count).Inspect())
		return false
	}

	return true
}
