package robin

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// maxScratchDepth bounds expression nesting: each level of a binary
// operator's right-hand operand claims the next scratch register, so
// the three fixed registers (r1, r3, r5) cap nesting at three deep.
const maxScratchDepth = 3

var scratchRegs = [maxScratchDepth]int{1, 3, 5}

func scratchLabel(depth int) string { return fmt.Sprintf("r%d", scratchRegs[depth]) }

// Compile lexes, parses and lowers a Robin source file into assembler
// text ready for assembler.Assemble. The calling convention (arg/ret/
// ret_to slots, a MOV-then-JMP call sequence, a trampoline return) and
// the jumping-code compilation of conditions are this expansion's own
// build-out of what original_source/src/robin/compiler.rs's compile_jcmp
// and value_from stubs only sketch for a handful of cases.
func Compile(src string) (string, error) {
	toks, err := Lex(src)
	if err != nil {
		return "", errors.Wrap(err, "lex")
	}
	prog, err := Parse(toks)
	if err != nil {
		return "", errors.Wrap(err, "parse")
	}
	c := newCompiler()
	if err := c.compileProgram(prog); err != nil {
		return "", err
	}
	return c.out.String(), nil
}

type funcSig struct {
	params []string
}

type compiler struct {
	out      strings.Builder
	consts   map[string]uint16
	globals  map[string]bool
	funcs    map[string]funcSig
	labelSeq int
}

func newCompiler() *compiler {
	return &compiler{
		consts:  make(map[string]uint16),
		globals: make(map[string]bool),
		funcs:   make(map[string]funcSig),
	}
}

func (c *compiler) emit(format string, args ...interface{}) {
	fmt.Fprintf(&c.out, format, args...)
	c.out.WriteByte('\n')
}

// newLabel mints a unique, stable label name: stable because it's
// derived from an FNV-1a hash of the prefix and a monotonic counter
// rather than anything non-deterministic, so compiling the same source
// twice produces byte-identical assembly.
func (c *compiler) newLabel(prefix string) string {
	c.labelSeq++
	h := fnv.New32a()
	fmt.Fprintf(h, "%s#%d", prefix, c.labelSeq)
	return fmt.Sprintf("_%s_%x", prefix, h.Sum32())
}

func argLabel(fn, param string) string  { return fmt.Sprintf("_fn_%s_arg_%s", fn, param) }
func localLabel(fn, name string) string { return fmt.Sprintf("_fn_%s_local_%s", fn, name) }
func retLabel(fn string) string         { return fmt.Sprintf("_fn_%s_ret", fn) }
func retToLabel(fn string) string       { return fmt.Sprintf("_fn_%s_ret_to", fn) }
func entryLabel(fn string) string       { return fmt.Sprintf("_fn_%s", fn) }
func globalLabel(name string) string    { return "_global_" + name }

func (c *compiler) compileProgram(prog []TopLevel) error {
	for _, top := range prog {
		cd, ok := top.(ConstDecl)
		if !ok {
			continue
		}
		if _, exists := c.consts[cd.Name]; exists {
			return &CompileError{Kind: ErrRedeclared, Msg: "const " + cd.Name + " declared twice"}
		}
		n, err := foldConstant(cd.Expr, c.consts)
		if err != nil {
			return errors.Wrapf(err, "const %s", cd.Name)
		}
		c.consts[cd.Name] = n
	}

	var funcOrder []FunctionDecl
	var globalOrder []GlobalDecl
	for _, top := range prog {
		switch v := top.(type) {
		case FunctionDecl:
			if _, exists := c.funcs[v.Name]; exists {
				return &CompileError{Kind: ErrRedeclared, Msg: "function " + v.Name + " declared twice"}
			}
			c.funcs[v.Name] = funcSig{params: v.Params}
			funcOrder = append(funcOrder, v)
		case GlobalDecl:
			if c.globals[v.Name] {
				return &CompileError{Kind: ErrRedeclared, Msg: "global " + v.Name + " declared twice"}
			}
			c.globals[v.Name] = true
			globalOrder = append(globalOrder, v)
		}
	}

	main, ok := c.funcs["main"]
	if !ok {
		return &CompileError{Kind: ErrMissingMain, Msg: "no fn main() declared"}
	}
	if len(main.params) != 0 {
		return &CompileError{Kind: ErrMainHasParams, Msg: "fn main must take no parameters"}
	}

	c.emit("JMP #%s;", entryLabel("main"))

	for _, g := range globalOrder {
		if err := c.compileGlobal(g); err != nil {
			return errors.Wrapf(err, "global %s", g.Name)
		}
	}
	for _, f := range funcOrder {
		if err := c.compileFunction(f); err != nil {
			return errors.Wrapf(err, "fn %s", f.Name)
		}
	}
	return nil
}

func (c *compiler) compileGlobal(g GlobalDecl) error {
	c.emit(":%s", globalLabel(g.Name))
	return c.emitData(g.Expr)
}

// emitData lowers a global's initializer into raw words: a string
// literal expands to one word per byte plus a 0 terminator (the I/O
// shim's print convention), an array literal to one word per element,
// and anything else must fold to a single constant word.
func (c *compiler) emitData(e Expression) error {
	switch v := e.(type) {
	case StringLit:
		for _, ch := range []byte(v.Value) {
			c.emit("0x%x;", ch)
		}
		c.emit("0;")
		return nil
	case ArrayLit:
		for _, n := range v.Values {
			c.emit("0x%x;", n)
		}
		return nil
	default:
		n, err := foldConstant(e, c.consts)
		if err != nil {
			return err
		}
		c.emit("0x%x;", n)
		return nil
	}
}

// collectLocals walks a function body (including nested if/while blocks,
// which share the function's flat storage rather than introducing their
// own scope) and returns every declared variable's name in first-seen
// order.
func collectLocals(stmts []Statement) ([]string, error) {
	var order []string
	seen := make(map[string]bool)
	var walk func([]Statement) error
	walk = func(stmts []Statement) error {
		for _, st := range stmts {
			switch v := st.(type) {
			case Declaration:
				if seen[v.Name] {
					return &CompileError{Kind: ErrRedeclared, Msg: "local variable " + v.Name + " declared twice"}
				}
				seen[v.Name] = true
				order = append(order, v.Name)
			case Block:
				if err := walk(v.Body); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(stmts); err != nil {
		return nil, err
	}
	return order, nil
}

// funcCompiler lowers one function body; pending holds string/array
// literal expressions encountered mid-body, hoisted to anonymous
// globals emitted after the function's trampoline return so they sit as
// inert data rather than instructions the CPU would try to execute.
type funcCompiler struct {
	c      *compiler
	name   string
	params map[string]bool
	locals map[string]bool

	pending []pendingGlobal
}

type pendingGlobal struct {
	label string
	expr  Expression
}

func (c *compiler) compileFunction(f FunctionDecl) error {
	locals, err := collectLocals(f.Body)
	if err != nil {
		return err
	}

	fc := &funcCompiler{c: c, name: f.Name, params: map[string]bool{}, locals: map[string]bool{}}
	for _, p := range f.Params {
		fc.params[p] = true
	}
	for _, l := range locals {
		fc.locals[l] = true
	}

	for _, p := range f.Params {
		c.emit(":%s", argLabel(f.Name, p))
		c.emit("reserve 1;")
	}
	c.emit(":%s", retLabel(f.Name))
	c.emit("reserve 1;")
	c.emit(":%s", retToLabel(f.Name))
	c.emit("reserve 1;")
	for _, l := range locals {
		c.emit(":%s", localLabel(f.Name, l))
		c.emit("reserve 1;")
	}

	c.emit(":%s", entryLabel(f.Name))
	for _, st := range f.Body {
		if err := fc.compileStatement(st); err != nil {
			return err
		}
	}
	c.emit("JMP &%s;", retToLabel(f.Name))

	for _, p := range fc.pending {
		c.emit(":%s", p.label)
		if err := c.emitData(p.expr); err != nil {
			return err
		}
	}
	return nil
}

// lvalue resolves name to its bare (unprefixed) storage label: a
// parameter, a local, or a global. Constants are not addressable this
// way -- only & of a plain ident is, and that's handled in evalUnary.
func (fc *funcCompiler) lvalue(name string) (string, error) {
	if fc.params[name] {
		return argLabel(fc.name, name), nil
	}
	if fc.locals[name] {
		return localLabel(fc.name, name), nil
	}
	if fc.c.globals[name] {
		return globalLabel(name), nil
	}
	if _, ok := fc.c.consts[name]; ok {
		return "", &CompileError{Kind: ErrUnsupportedExpression, Msg: "cannot use constant " + name + " as an lvalue"}
	}
	return "", &CompileError{Kind: ErrUnresolvedIdentifier, Msg: "unresolved identifier " + name}
}

var assignMathMnemonic = map[AssignOp]string{
	AssignAdd: "add", AssignSub: "sub", AssignMul: "mul",
	AssignAnd: "and", AssignOr: "or", AssignXor: "xor",
	AssignShl: "shl", AssignShr: "shr",
}

func (fc *funcCompiler) compileStatement(st Statement) error {
	log.WithFields(log.Fields{"fn": fc.name, "node": fmt.Sprintf("%T", st)}).Debug("robin: lowering statement")
	switch v := st.(type) {
	case Declaration:
		if v.Init == nil {
			return nil
		}
		item, err := fc.evalItem(v.Init, 0)
		if err != nil {
			return err
		}
		fc.c.emit("mov %s &%s;", item, localLabel(fc.name, v.Name))
		return nil

	case Assignment:
		dst, err := fc.lvalue(v.Name)
		if err != nil {
			return err
		}
		item, err := fc.evalItem(v.Expr, 0)
		if err != nil {
			return err
		}
		if v.Op == AssignSet {
			fc.c.emit("mov %s &%s;", item, dst)
			return nil
		}
		mnemonic, ok := assignMathMnemonic[v.Op]
		if !ok {
			return &CompileError{Kind: ErrUnsupportedExpression, Msg: "unsupported compound assignment operator"}
		}
		fc.c.emit("%s %s &%s;", mnemonic, item, dst)
		return nil

	case StarAssignment:
		ptrAddr, err := fc.evalAddr(v.Lhs, 0)
		if err != nil {
			return err
		}
		rhs, err := fc.evalItem(v.Rhs, 1)
		if err != nil {
			return err
		}
		fc.c.emit("ptrwrite %s &%s;", rhs, ptrAddr)
		return nil

	case FunctionCallStmt:
		_, err := fc.compileCall(v.Call, 0)
		return err

	case Block:
		return fc.compileBlock(v)

	case Return:
		if v.Expr != nil {
			item, err := fc.evalItem(v.Expr, 0)
			if err != nil {
				return err
			}
			fc.c.emit("mov %s &%s;", item, retLabel(fc.name))
		}
		fc.c.emit("JMP &%s;", retToLabel(fc.name))
		return nil

	default:
		return &CompileError{Kind: ErrUnsupportedExpression, Msg: "unsupported statement form"}
	}
}

func (fc *funcCompiler) compileBlock(b Block) error {
	if b.Type == BlockIf {
		end := fc.c.newLabel("endif")
		log.WithFields(log.Fields{"fn": fc.name, "block": "if", "end": end}).Debug("robin: lowering block")
		if err := fc.compileJumpFalse(b.Cond, end, 0); err != nil {
			return err
		}
		for _, s := range b.Body {
			if err := fc.compileStatement(s); err != nil {
				return err
			}
		}
		fc.c.emit(":%s", end)
		return nil
	}

	// while (c) { body } lowers to a jump-to-tail-check shape: the
	// condition test lives once, after the body, so the loop costs one
	// unconditional jump up front instead of re-testing before every
	// single pass.
	head := fc.c.newLabel("while")
	tail := head + "_tail"
	log.WithFields(log.Fields{"fn": fc.name, "block": "while", "head": head, "tail": tail}).Debug("robin: lowering block")
	fc.c.emit("JMP #%s;", tail)
	fc.c.emit(":%s", head)
	for _, s := range b.Body {
		if err := fc.compileStatement(s); err != nil {
			return err
		}
	}
	fc.c.emit(":%s", tail)
	if err := fc.compileJumpTrue(b.Cond, head, 0); err != nil {
		return err
	}
	return nil
}

// compileCall lowers a call expression: each argument's value moves into
// the callee's arg slot, the return address moves into its ret_to slot,
// then a direct JMP hands off control. The call's value is the address
// of the callee's ret slot. yield() is the one builtin, recognized by
// name rather than resolved against funcs, since there's no Robin-level
// function body that could produce a bare YIELD.
func (fc *funcCompiler) compileCall(call FunctionCall, depth int) (string, error) {
	log.WithFields(log.Fields{"fn": fc.name, "call": call.Name, "depth": depth}).Debug("robin: lowering call")
	if call.Name == "yield" {
		if len(call.Args) != 0 {
			return "", &CompileError{Kind: ErrArityMismatch, Msg: "yield takes no arguments"}
		}
		fc.c.emit("YIELD;")
		return "#0x0", nil
	}

	sig, ok := fc.c.funcs[call.Name]
	if !ok {
		return "", &CompileError{Kind: ErrUnresolvedIdentifier, Msg: "call to unknown function " + call.Name}
	}
	if len(call.Args) != len(sig.params) {
		return "", &CompileError{Kind: ErrArityMismatch, Msg: fmt.Sprintf("%s takes %d argument(s), got %d", call.Name, len(sig.params), len(call.Args))}
	}
	for i, arg := range call.Args {
		item, err := fc.evalItem(arg, depth)
		if err != nil {
			return "", err
		}
		fc.c.emit("mov %s &%s;", item, argLabel(call.Name, sig.params[i]))
	}
	retTo := fc.c.newLabel("ret")
	fc.c.emit("mov #%s &%s;", retTo, retToLabel(call.Name))
	fc.c.emit("JMP #%s;", entryLabel(call.Name))
	fc.c.emit(":%s", retTo)
	return "&" + retLabel(call.Name), nil
}
