package core

import (
	"testing"

	"kestrel/internal/value"
	"kestrel/internal/vm"
)

var fns = Functions()

func expr(vs ...value.Value) value.Value {
	return value.FromSeq(value.SequenceOf(vs...))
}

func fnVal(name string) value.Value {
	return value.FromFunc(fns[name])
}

// probeFn records every call and returns the value the table dictates.
func probeFn(calls *int, result func(n int64) value.Value) value.Value {
	return value.FromFunc(&value.Function{
		Name: "probe",
		Fn: func(m value.Machine) {
			*calls++
			var arg int64
			if p := m.Param(0); p != nil {
				arg = p.ForceInt()
			}
			m.Retval(result(arg))
		},
	})
}

func addFn() value.Value {
	return value.FromFunc(&value.Function{
		Name:      "add",
		Signature: "N,N",
		Fn: func(m value.Machine) {
			a := m.Param(0)
			b := m.Param(1)
			if a == nil || !a.IsNumeric() || b == nil || !b.IsNumeric() {
				m.RaiseParamError("N,N")
				return
			}
			m.Retval(value.Int(a.ForceInt() + b.ForceInt()))
		},
	})
}

func mustEval(t *testing.T, e value.Value) value.Value {
	t.Helper()
	got, err := vm.New().Eval(e)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return got
}

func TestEq(t *testing.T) {
	got := mustEval(t, expr(fnVal("eq"), value.Int(3), value.Float(3)))
	if b, _ := got.AsBool(); !b {
		t.Errorf("eq(3, 3.0) = %s, want true", got.Inspect())
	}

	got = mustEval(t, expr(fnVal("eq"), value.String("a"), value.String("b")))
	if b, _ := got.AsBool(); b {
		t.Errorf("eq(\"a\", \"b\") = %s, want false", got.Inspect())
	}
}

func TestMinMax(t *testing.T) {
	got := mustEval(t, expr(fnVal("min"), value.Int(4), value.Float(1.5), value.Int(9)))
	if f, _ := got.AsFloat(); f != 1.5 {
		t.Errorf("min = %s, want 1.5", got.Inspect())
	}

	got = mustEval(t, expr(fnVal("max"), value.Int(4), value.Float(1.5), value.Int(9)))
	if got.ForceInt() != 9 {
		t.Errorf("max = %s, want 9", got.Inspect())
	}

	if got = mustEval(t, expr(fnVal("min"))); !got.IsNil() {
		t.Errorf("min() = %s, want nil", got.Inspect())
	}
}

func TestLitStopsEvaluation(t *testing.T) {
	calls := 0
	inner := expr(probeFn(&calls, func(int64) value.Value { return value.Int(1) }))

	got := mustEval(t, expr(fnVal("lit"), inner))
	if calls != 0 {
		t.Fatalf("lit evaluated its argument")
	}
	if !got.IsSequence() {
		t.Errorf("lit should return the expression itself, got %s", got.Inspect())
	}
}

func TestFirstOf(t *testing.T) {
	calls := 0
	deferred := expr(probeFn(&calls, func(int64) value.Value { return value.Int(1) }))

	got := mustEval(t, expr(fnVal("firstOf"),
		value.Nil(), value.Int(0), value.String("hit"), deferred))
	if s, _ := got.AsString(); s != "hit" {
		t.Errorf("firstOf = %s, want \"hit\"", got.Inspect())
	}
	if calls != 0 {
		t.Errorf("firstOf must not evaluate its parameters")
	}

	if got = mustEval(t, expr(fnVal("firstOf"), value.Int(0), value.Nil())); !got.IsNil() {
		t.Errorf("all-false firstOf = %s, want nil", got.Inspect())
	}
}

func TestEvalReducesDeferredExpression(t *testing.T) {
	inner := expr(addFn(), value.Int(2), expr(addFn(), value.Int(3), value.Int(4)))
	got := mustEval(t, expr(fnVal("eval"), inner))
	if got.ForceInt() != 9 {
		t.Errorf("eval = %s, want 9", got.Inspect())
	}

	got = mustEval(t, expr(fnVal("eval"), value.Int(7)))
	if got.ForceInt() != 7 {
		t.Errorf("eval of an atom = %s, want 7", got.Inspect())
	}
}

func TestAnyShortCircuits(t *testing.T) {
	calls := 0
	hit := probeFn(&calls, func(int64) value.Value { return value.Bool(true) })
	miss := probeFn(&calls, func(int64) value.Value { return value.Bool(false) })

	seq := value.SequenceOf(expr(miss), expr(hit), expr(miss))
	got := mustEval(t, expr(fnVal("any"), value.FromSeq(seq)))
	if b, _ := got.AsBool(); !b {
		t.Fatalf("any = %s, want true", got.Inspect())
	}
	if calls != 2 {
		t.Errorf("any evaluated %d elements, want 2 (stop on first true)", calls)
	}
}

func TestAnyPlainValuesAndEmpty(t *testing.T) {
	got := mustEval(t, expr(fnVal("any"),
		value.FromSeq(value.SequenceOf(value.Int(0), value.String(""), value.Int(2)))))
	if b, _ := got.AsBool(); !b {
		t.Errorf("a plain true element should satisfy any")
	}

	got = mustEval(t, expr(fnVal("any"), value.FromSeq(value.NewSequence())))
	if b, _ := got.AsBool(); b {
		t.Errorf("any([]) = %s, want false", got.Inspect())
	}
}

func TestAllShortCircuits(t *testing.T) {
	calls := 0
	hit := probeFn(&calls, func(int64) value.Value { return value.Bool(true) })
	miss := probeFn(&calls, func(int64) value.Value { return value.Bool(false) })

	seq := value.SequenceOf(expr(hit), expr(miss), expr(hit))
	got := mustEval(t, expr(fnVal("all"), value.FromSeq(seq)))
	if b, _ := got.AsBool(); b {
		t.Fatalf("all = %s, want false", got.Inspect())
	}
	if calls != 2 {
		t.Errorf("all evaluated %d elements, want 2 (stop on first false)", calls)
	}
}

func TestAllTrueElements(t *testing.T) {
	got := mustEval(t, expr(fnVal("all"),
		value.FromSeq(value.SequenceOf(value.Int(1), value.Int(2), value.Int(3)))))
	if b, _ := got.AsBool(); !b {
		t.Errorf("all([1,2,3]) = %s, want true", got.Inspect())
	}
}

func TestAllEmptyIsFalse(t *testing.T) {
	// historical quirk, kept: an empty sequence fails the check
	got := mustEval(t, expr(fnVal("all"), value.FromSeq(value.NewSequence())))
	if b, _ := got.AsBool(); b {
		t.Errorf("all([]) = %s, want false", got.Inspect())
	}
}

func TestAnypAllp(t *testing.T) {
	calls := 0
	hit := probeFn(&calls, func(int64) value.Value { return value.Bool(true) })

	got := mustEval(t, expr(fnVal("anyp"), value.Int(0), expr(hit), value.Int(0)))
	if b, _ := got.AsBool(); !b {
		t.Errorf("anyp = %s, want true", got.Inspect())
	}
	if calls != 1 {
		t.Errorf("anyp stopped after %d probe calls, want 1", calls)
	}

	got = mustEval(t, expr(fnVal("allp"), value.Int(1), value.String("x")))
	if b, _ := got.AsBool(); !b {
		t.Errorf("allp over true parameters = %s, want true", got.Inspect())
	}

	got = mustEval(t, expr(fnVal("allp"), value.Int(1), value.Int(0)))
	if b, _ := got.AsBool(); b {
		t.Errorf("allp with a false parameter = %s, want false", got.Inspect())
	}

	got = mustEval(t, expr(fnVal("allp")))
	if b, _ := got.AsBool(); b {
		t.Errorf("allp() = %s, want false", got.Inspect())
	}
}

func TestIffEvaluatesOneBranch(t *testing.T) {
	trueCalls, falseCalls := 0, 0
	whenTrue := expr(probeFn(&trueCalls, func(int64) value.Value { return value.String("yes") }))
	whenFalse := expr(probeFn(&falseCalls, func(int64) value.Value { return value.String("no") }))

	cond := expr(addFn(), value.Int(0), value.Int(1))
	got := mustEval(t, expr(fnVal("iff"), cond, whenTrue, whenFalse))
	if s, _ := got.AsString(); s != "yes" {
		t.Fatalf("iff = %s, want \"yes\"", got.Inspect())
	}
	if trueCalls != 1 || falseCalls != 0 {
		t.Errorf("branch calls = (%d,%d), want (1,0)", trueCalls, falseCalls)
	}

	got = mustEval(t, expr(fnVal("iff"), value.Int(0), whenTrue, whenFalse))
	if s, _ := got.AsString(); s != "no" {
		t.Errorf("false iff = %s, want \"no\"", got.Inspect())
	}

	got = mustEval(t, expr(fnVal("iff"), value.Int(0), whenTrue))
	if !got.IsNil() {
		t.Errorf("missing false branch should yield nil, got %s", got.Inspect())
	}
}

func TestChoiceReturnsBranchUnevaluated(t *testing.T) {
	calls := 0
	branch := expr(probeFn(&calls, func(int64) value.Value { return value.Int(1) }))

	got := mustEval(t, expr(fnVal("choice"), value.Int(1), branch, value.Int(9)))
	if calls != 0 {
		t.Fatalf("choice evaluated the selected branch")
	}
	if !got.IsSequence() {
		t.Errorf("choice should return the branch as-is, got %s", got.Inspect())
	}

	got = mustEval(t, expr(fnVal("choice"), value.Int(0), branch))
	if !got.IsNil() {
		t.Errorf("false selector without alternative = %s, want nil", got.Inspect())
	}
}
