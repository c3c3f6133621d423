package core

import (
	"kestrel/internal/value"
)

// Functions returns the combinator module's registry, keyed by script-level
// name. Eta entries receive their arguments unevaluated when named at the
// head of a deferred expression and drive any evaluation themselves.
func Functions() map[string]*value.Function {
	return map[string]*value.Function{
		"eq":      fnEq(),
		"min":     fnMin(),
		"max":     fnMax(),
		"lit":     fnLit(),
		"firstOf": fnFirstOf(),
		"eval":    fnEval(),
		"any":     fnAny(),
		"all":     fnAll(),
		"anyp":    fnAnyp(),
		"allp":    fnAllp(),
		"iff":     fnIff(),
		"choice":  fnChoice(),
		"map":     fnMap(),
		"xmap":    fnXmap(),
		"filter":  fnFilter(),
		"reduce":  fnReduce(),
		"dolist":  fnDolist(),
		"times":   fnTimes(),
		"cascade": fnCascade(),
		"floop":   fnFloop(),
	}
}

func fnEq() *value.Function {
	return &value.Function{Name: "eq", Signature: "X,X", Fn: coreEq}
}

func fnMin() *value.Function {
	return &value.Function{Name: "min", Signature: "...", Fn: coreMin}
}

func fnMax() *value.Function {
	return &value.Function{Name: "max", Signature: "...", Fn: coreMax}
}

func fnLit() *value.Function {
	return &value.Function{Name: "lit", Signature: "X", Eta: true, Fn: coreLit}
}

func fnFirstOf() *value.Function {
	return &value.Function{Name: "firstOf", Signature: "...", Eta: true, Fn: coreFirstOf}
}

func fnEval() *value.Function {
	return &value.Function{Name: "eval", Signature: "X", Eta: true, Fn: coreEval}
}

func fnAny() *value.Function {
	return &value.Function{Name: "any", Signature: "A", Eta: true, Fn: coreAny}
}

func fnAll() *value.Function {
	return &value.Function{Name: "all", Signature: "A", Eta: true, Fn: coreAll}
}

func fnAnyp() *value.Function {
	return &value.Function{Name: "anyp", Signature: "...", Eta: true, Fn: coreAnyp}
}

func fnAllp() *value.Function {
	return &value.Function{Name: "allp", Signature: "...", Eta: true, Fn: coreAllp}
}

func fnIff() *value.Function {
	return &value.Function{Name: "iff", Signature: "X,X,[X]", Eta: true, Fn: coreIff}
}

func fnChoice() *value.Function {
	return &value.Function{Name: "choice", Signature: "X,X,[X]", Eta: true, Fn: coreChoice}
}

func fnMap() *value.Function {
	return &value.Function{Name: "map", Signature: "C,A", Fn: coreMap}
}

func fnXmap() *value.Function {
	return &value.Function{Name: "xmap", Signature: "C,A", Eta: true, Fn: coreXmap}
}

func fnFilter() *value.Function {
	return &value.Function{Name: "filter", Signature: "C,A", Fn: coreFilter}
}

func fnReduce() *value.Function {
	return &value.Function{Name: "reduce", Signature: "C,A,[X]", Fn: coreReduce}
}

func fnDolist() *value.Function {
	return &value.Function{Name: "dolist", Signature: "C,A", Eta: true, Fn: coreDolist}
}

func fnTimes() *value.Function {
	return &value.Function{Name: "times", Signature: "N|R,$|Nil|N,A", Eta: true, Fn: coreTimes}
}

func fnCascade() *value.Function {
	return &value.Function{Name: "cascade", Signature: "A,...", Eta: true, Fn: coreCascade}
}

func fnFloop() *value.Function {
	return &value.Function{Name: "floop", Signature: "A", Eta: true, Fn: coreFloop}
}
