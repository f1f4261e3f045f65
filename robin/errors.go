package robin

import "fmt"

// ErrorKind names one member of the compile error taxonomy, so callers
// (and tests) can switch on the failure category without string
// matching.
type ErrorKind int

const (
	ErrMissingMain ErrorKind = iota
	ErrMainHasParams
	ErrUnresolvedIdentifier
	ErrArityMismatch
	ErrUnsupportedExpression
	ErrUnsupportedConstant
	ErrRedeclared
	ErrNestedTooDeep
)

var errorKindNames = map[ErrorKind]string{
	ErrMissingMain:           "missing main",
	ErrMainHasParams:         "main takes parameters",
	ErrUnresolvedIdentifier:  "unresolved identifier",
	ErrArityMismatch:         "arity mismatch",
	ErrUnsupportedExpression: "unsupported expression",
	ErrUnsupportedConstant:   "unsupported constant initializer",
	ErrRedeclared:            "redeclared name",
	ErrNestedTooDeep:         "expression nested too deeply",
}

// CompileError reports a failure during Compile, carrying a taxonomy Kind
// a caller can test for alongside the human-readable Msg.
type CompileError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("robin: %s: %s", errorKindNames[e.Kind], e.Msg)
}
