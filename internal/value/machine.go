package value

// Routine is a native extension entry point. It runs inside a call frame on
// an execution context and communicates exclusively through the Machine
// surface: parameters in, result through the return register.
type Routine func(m Machine)

// ReturnHandler is a continuation with the same calling shape as a Routine.
// The scheduler invokes it when a nested call the routine requested has
// resolved, with the result in the return register. Returning true keeps
// the frame alive (another nested call was requested, or the handler wants
// to run again); returning false finalizes the frame with the register as
// its result.
type ReturnHandler func(m Machine) bool

// Function is the callable heap entity: a native routine with the metadata
// the dispatcher needs. Eta functions receive their arguments unevaluated
// when a deferred expression naming them is functionally evaluated; they
// drive any evaluation themselves.
type Function struct {
	Name      string
	Signature string
	Eta       bool
	Fn        Routine
}

// Machine is the bridge between native Go routines and the execution
// context, mirroring what the interpreter core exposes to extensions:
// parameter introspection, frame state management, nested-call scheduling
// and the return register.
//
// Param returns nil when the parameter is absent; by-reference parameters
// are dereferenced transparently, so writing through the returned pointer
// updates the caller's slot. CallFrame consumes the last argc pushed
// parameters and schedules the call as the next step, reporting false when
// the target is not callable. FunctionalEval reduces a deferred expression,
// reporting true when the reduction suspended (the registered continuation
// sees the result later) and false when the result is already in the
// register.
type Machine interface {
	ParamCount() int
	Param(i int) *Value
	IsParamByRef(i int) bool

	PushParameter(v Value)
	CallFrame(callable Value, argc int) bool

	ReturnHandler(h ReturnHandler)
	AddLocals(n int)
	Local(i int) *Value

	RegA() *Value
	Retval(v Value)
	RetNil()

	FunctionalEval(v Value) bool

	RaiseParamError(signature string)
	RaiseError(kind, format string, a ...any)
}
