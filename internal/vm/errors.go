package vm

import (
	"fmt"
	"strings"
)

// Error kinds surfaced by the execution context. Parameter errors carry the
// expected signature string in the message so the caller can see the shape
// the routine wanted.
const (
	ErrInvalidParams = "inv_params"
	ErrNonCallable   = "non_callable"
	ErrForeign       = "foreign"
	ErrInternal      = "internal"
)

// RuntimeError is a raised native-level error. It unwinds the active frame
// stack, popping registered continuations without invoking them, and reaches
// the embedder through Eval or Call.
type RuntimeError struct {
	Kind    string
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return e.Kind + ": " + e.Message
}

// RenderTrace formats the captured frame trace, innermost first.
func (e *RuntimeError) RenderTrace() string {
	var out strings.Builder
	out.WriteString(e.Error())
	for _, f := range e.Trace {
		out.WriteString(fmt.Sprintf("\n  at %s", f))
	}
	return out.String()
}
