package vm

import (
	"fmt"
	"log/slog"

	"kestrel/internal/value"
)

// frame is one activation record: the originating parameter list, the local
// slots the routine asked for, and the continuation to re-enter when a
// nested call resolves. State a routine needs across suspensions lives in
// the locals, never on the host stack.
type frame struct {
	name    string
	fn      value.Routine
	params  []value.Value
	locals  []value.Value
	handler value.ReturnHandler
	entered bool
}

// VM is one execution context: a call-frame stack, the single return
// register, and the buffer where parameters for the next nested call are
// assembled. It is single-threaded and cooperative; suspension happens only
// at the continuation boundaries routines declare. Independent contexts may
// run on separate goroutines.
type VM struct {
	frames  []*frame
	pending []value.Value
	regA    value.Value
	raised  *RuntimeError
}

func New() *VM {
	return &VM{}
}

// Eval functionally evaluates v to an atomic result: a deferred expression
// (a sequence whose head is callable) is reduced inner-to-outer, anything
// else evaluates to itself.
func (m *VM) Eval(v value.Value) (value.Value, error) {
	m.reset()
	if m.FunctionalEval(v) {
		m.run()
	}
	if m.raised != nil {
		return value.Nil(), m.raised
	}
	return m.regA, nil
}

// Call invokes a callable value with the given arguments and drives it to
// completion.
func (m *VM) Call(callable value.Value, args ...value.Value) (value.Value, error) {
	m.reset()
	for _, a := range args {
		m.PushParameter(a)
	}
	if !m.CallFrame(callable, len(args)) {
		return value.Nil(), &RuntimeError{Kind: ErrNonCallable, Message: callable.Inspect()}
	}
	m.run()
	if m.raised != nil {
		return value.Nil(), m.raised
	}
	return m.regA, nil
}

func (m *VM) reset() {
	m.frames = m.frames[:0]
	m.pending = m.pending[:0]
	m.regA = value.Nil()
	m.raised = nil
}

// run is the trampoline: it enters the top frame's routine once, then keeps
// re-entering its registered continuation every time a nested frame
// resolves, until the frame finalizes. Host stack depth stays constant per
// nesting level no matter how many steps a routine drives.
func (m *VM) run() {
	for len(m.frames) > 0 {
		if m.raised != nil {
			// Unwind: pop continuations without invoking them.
			m.frames = m.frames[:0]
			return
		}

		f := m.frames[len(m.frames)-1]
		if !f.entered {
			f.entered = true
			m.invoke(f)
			continue
		}
		if f.handler != nil {
			if m.resume(f) {
				continue
			}
			f.handler = nil
		}
		m.popFrame()
	}
}

func (m *VM) invoke(f *frame) {
	defer m.recoverPanic(f)
	f.fn(m)
}

func (m *VM) resume(f *frame) (again bool) {
	defer m.recoverPanic(f)
	return f.handler(m)
}

func (m *VM) recoverPanic(f *frame) {
	if r := recover(); r != nil {
		slog.Error("panic in native routine",
			slog.String("frame", f.name),
			slog.Any("panic", r))
		m.raise(ErrInternal, fmt.Sprintf("panic in %s: %v", f.name, r))
	}
}

func (m *VM) pushFrame(f *frame) {
	m.frames = append(m.frames, f)
	slog.Debug("push call frame",
		slog.String("frame", f.name),
		slog.Int("stack-size", len(m.frames)))
}

func (m *VM) popFrame() {
	m.frames = m.frames[:len(m.frames)-1]
	slog.Debug("pop call frame",
		slog.Int("stack-size", len(m.frames)))
}

func (m *VM) top() *frame {
	if len(m.frames) == 0 {
		panic("no active frame")
	}
	return m.frames[len(m.frames)-1]
}

// ParamCount reports the number of parameters of the active frame.
func (m *VM) ParamCount() int {
	return len(m.top().params)
}

// Param returns a pointer to parameter i, or nil when absent. A
// by-reference parameter is dereferenced, so writes through the pointer
// reach the caller's slot.
func (m *VM) Param(i int) *value.Value {
	f := m.top()
	if i < 0 || i >= len(f.params) {
		return nil
	}
	p := &f.params[i]
	for {
		ref, ok := p.AsRef()
		if !ok {
			return p
		}
		p = ref.Target
	}
}

// IsParamByRef reports whether parameter i was passed by reference.
func (m *VM) IsParamByRef(i int) bool {
	f := m.top()
	if i < 0 || i >= len(f.params) {
		return false
	}
	return f.params[i].IsRef()
}

// PushParameter appends v to the argument list being built for the next
// nested call.
func (m *VM) PushParameter(v value.Value) {
	m.pending = append(m.pending, v)
}

// CallFrame consumes the last argc pushed parameters and schedules a call
// to callable as the next step. Calling a sequence explodes it: elements
// past the head become leading parameters and the head is the callee,
// recursively. Returns false (dropping the arguments) when the target is
// not callable.
func (m *VM) CallFrame(callable value.Value, argc int) bool {
	args := m.takeParams(argc)
	callable = callable.Deref()
	for {
		if f, ok := callable.AsFunc(); ok {
			m.pushFrame(&frame{name: f.Name, fn: f.Fn, params: args})
			return true
		}
		s, ok := callable.AsSeq()
		if !ok || s.Len() == 0 {
			return false
		}
		exploded := make([]value.Value, 0, s.Len()-1+len(args))
		for i := 1; i < s.Len(); i++ {
			exploded = append(exploded, s.At(i))
		}
		args = append(exploded, args...)
		callable = s.At(0).Deref()
	}
}

func (m *VM) takeParams(argc int) []value.Value {
	if argc <= 0 {
		return nil
	}
	if argc > len(m.pending) {
		argc = len(m.pending)
	}
	split := len(m.pending) - argc
	args := make([]value.Value, argc)
	copy(args, m.pending[split:])
	m.pending = m.pending[:split]
	return args
}

// ReturnHandler registers (or, with nil, unregisters) the continuation of
// the active frame.
func (m *VM) ReturnHandler(h value.ReturnHandler) {
	m.top().handler = h
}

// AddLocals grows the active frame's local slots by n nil values.
func (m *VM) AddLocals(n int) {
	f := m.top()
	for i := 0; i < n; i++ {
		f.locals = append(f.locals, value.Nil())
	}
}

// Local returns a pointer to local slot i of the active frame.
func (m *VM) Local(i int) *value.Value {
	return &m.top().locals[i]
}

// RegA exposes the return register.
func (m *VM) RegA() *value.Value { return &m.regA }

// Retval finalizes v into the return register.
func (m *VM) Retval(v value.Value) { m.regA = v }

// RetNil finalizes nil into the return register.
func (m *VM) RetNil() { m.regA = value.Nil() }

// RaiseParamError raises a parameter-shape error carrying the expected
// signature.
func (m *VM) RaiseParamError(signature string) {
	m.raise(ErrInvalidParams, signature)
}

// RaiseError raises a native-level error that unwinds the frame stack.
func (m *VM) RaiseError(kind, format string, a ...any) {
	m.raise(kind, fmt.Sprintf(format, a...))
}

func (m *VM) raise(kind, message string) {
	if m.raised != nil {
		return
	}
	trace := make([]string, 0, len(m.frames))
	for i := len(m.frames) - 1; i >= 0; i-- {
		trace = append(trace, m.frames[i].name)
	}
	m.raised = &RuntimeError{Kind: kind, Message: message, Trace: trace}
	slog.Debug("raised runtime error",
		slog.String("kind", kind),
		slog.String("message", message))
}

// FunctionalEval starts the reduction of v. Non-sequences (and empty
// sequences) evaluate to themselves immediately: the result is placed in
// the register and false is returned. Otherwise a reduction frame is
// scheduled and true is returned; the caller's registered continuation will
// observe the result. Eta functions at the head of a sequence are called
// with their arguments unevaluated.
func (m *VM) FunctionalEval(v value.Value) bool {
	s, ok := v.Deref().AsSeq()
	if !ok || s.Len() == 0 {
		m.regA = v.Deref()
		return false
	}

	if f, ok := s.At(0).Deref().AsFunc(); ok && f.Eta {
		for i := 1; i < s.Len(); i++ {
			m.PushParameter(s.At(i))
		}
		m.CallFrame(s.At(0), s.Len()-1)
		return true
	}

	m.pushFrame(&frame{
		name:   "<eval>",
		fn:     evalEntry,
		params: []value.Value{value.FromSeq(s)},
	})
	return true
}

// Deferred-expression reduction, itself written against the suspend/resume
// protocol so nesting depth costs VM frames, not host stack.
//
// Locals: 0 holds the index of the element being reduced, 1 the working
// copy receiving reduced elements.
func evalEntry(m value.Machine) {
	src, _ := m.Param(0).AsSeq()
	work := src.Clone()
	m.AddLocals(2)
	*m.Local(0) = value.Int(0)
	*m.Local(1) = value.FromSeq(work)
	m.ReturnHandler(evalNext)
	evalAdvance(m)
}

func evalNext(m value.Machine) bool {
	work, _ := m.Local(1).AsSeq()
	idx, _ := m.Local(0).AsInt()
	if int(idx) < work.Len() {
		work.Set(int(idx), *m.RegA())
		*m.Local(0) = value.Int(idx + 1)
		return evalAdvance(m)
	}
	// The head call resolved; its result is the reduction result.
	return false
}

// evalAdvance reduces elements from the current index on, suspending when a
// nested reduction is scheduled. Once every element is atomic it either
// calls the head with the rest as parameters or finalizes the reduced
// sequence itself.
func evalAdvance(m value.Machine) bool {
	work, _ := m.Local(1).AsSeq()
	idx, _ := m.Local(0).AsInt()

	for i := int(idx); i < work.Len(); i++ {
		elem := work.At(i)
		if s, ok := elem.Deref().AsSeq(); ok && s.Len() > 0 {
			// a non-empty nested sequence always schedules a reduction frame
			*m.Local(0) = value.Int(int64(i))
			m.FunctionalEval(elem)
			return true
		}
	}

	if work.At(0).IsCallable() {
		*m.Local(0) = value.Int(int64(work.Len()))
		for i := 1; i < work.Len(); i++ {
			m.PushParameter(work.At(i))
		}
		m.CallFrame(work.At(0), work.Len()-1)
		return true
	}

	m.ReturnHandler(nil)
	m.Retval(value.FromSeq(work))
	return false
}
