package robin_test

import (
	"errors"
	"testing"

	"github.com/Urethramancer/robinvm/assembler"
	"github.com/Urethramancer/robinvm/cpu"
	"github.com/Urethramancer/robinvm/robin"
)

func TestLexOperators(t *testing.T) {
	toks, err := robin.Lex(`a *= 1; b[0] = 2; c &= 3;`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var kinds []robin.TokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []robin.TokenKind{
		robin.TokIdent, robin.TokStarEq, robin.TokInt, robin.TokSemi,
		robin.TokIdent, robin.TokLBracket, robin.TokInt, robin.TokRBracket, robin.TokEq, robin.TokInt, robin.TokSemi,
		robin.TokIdent, robin.TokAndEq, robin.TokInt, robin.TokSemi,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseFunctionAndIf(t *testing.T) {
	toks, err := robin.Lex(`
		fn main() {
			var i = 0;
			if (i == 0) {
				i = 1;
			}
		}
	`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	prog, err := robin.Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog) != 1 {
		t.Fatalf("got %d top-level decls, want 1", len(prog))
	}
	fn, ok := prog[0].(robin.FunctionDecl)
	if !ok {
		t.Fatalf("top-level decl is %T, want FunctionDecl", prog[0])
	}
	if fn.Name != "main" || len(fn.Params) != 0 || len(fn.Body) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if _, ok := fn.Body[1].(robin.Block); !ok {
		t.Fatalf("second statement is %T, want Block", fn.Body[1])
	}
}

// compileAndRun compiles src, assembles it, and loads it into a fresh CPU
// ready to run at assembler.DefaultBase. It returns the CPU and the
// resolved label table so tests can inspect named storage slots.
func compileAndRun(t *testing.T, src string) (*cpu.CPU, map[string]uint16) {
	t.Helper()
	asmText, err := robin.Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	asm := assembler.New()
	words, err := asm.Assemble(asmText, assembler.DefaultBase)
	if err != nil {
		t.Fatalf("Assemble(%q): %v", asmText, err)
	}
	c := cpu.New()
	c.LoadAt(assembler.DefaultBase, words)
	c.WriteWord(cpu.IP, assembler.DefaultBase)
	return c, asm.Labels()
}

func TestCompileWhileLoopYieldsThreeTimes(t *testing.T) {
	c, labels := compileAndRun(t, `
		fn main() {
			var i = 0;
			while (i < 3) {
				i += 1;
				yield();
			}
		}
	`)

	for n := 0; n < 3; n++ {
		c.UntilYield()
	}

	addr, ok := labels["_fn_main_local_i"]
	if !ok {
		t.Fatal("label _fn_main_local_i not found")
	}
	if got := c.ReadWord(addr); got != 3 {
		t.Fatalf("i = %d, want 3", got)
	}
}

func TestCompileFunctionCallReturnsSum(t *testing.T) {
	c, labels := compileAndRun(t, `
		fn add(a, b) {
			return a + b;
		}
		fn main() {
			var r = add(2, 3);
			yield();
		}
	`)

	c.UntilYield()

	addr, ok := labels["_fn_main_local_r"]
	if !ok {
		t.Fatal("label _fn_main_local_r not found")
	}
	if got := c.ReadWord(addr); got != 5 {
		t.Fatalf("r = %d, want 5", got)
	}
}

func TestCompileIfTakesBranch(t *testing.T) {
	c, labels := compileAndRun(t, `
		fn main() {
			var x = 0;
			if (1 == 1) {
				x = 7;
			}
			yield();
		}
	`)

	c.UntilYield()

	addr := labels["_fn_main_local_x"]
	if got := c.ReadWord(addr); got != 7 {
		t.Fatalf("x = %d, want 7", got)
	}
}

func TestCompileDerefAndAddressOf(t *testing.T) {
	c, labels := compileAndRun(t, `
		fn main() {
			var v = 42;
			var p = &v;
			var out = *p;
			yield();
		}
	`)

	c.UntilYield()

	addr := labels["_fn_main_local_out"]
	if got := c.ReadWord(addr); got != 42 {
		t.Fatalf("out = %d, want 42", got)
	}
}

func TestCompileShortCircuitAnd(t *testing.T) {
	// The right side of && must not run when the left side is false: if it
	// did, setY would leave hit at 1 instead of 0. The body must not run
	// either, which would leave y at 9.
	c, labels := compileAndRun(t, `
		global hit = 0;
		fn main() {
			var y = 0;
			if (0 == 1 && setY()) {
				y = 9;
			}
			yield();
		}
		fn setY() {
			hit = 1;
			return 1;
		}
	`)

	c.UntilYield()

	if got := c.ReadWord(labels["_global_hit"]); got != 0 {
		t.Fatalf("hit = %d, want 0 (right side of && should not have executed)", got)
	}
	addr := labels["_fn_main_local_y"]
	if got := c.ReadWord(addr); got != 0 {
		t.Fatalf("y = %d, want 0 (if body should not have executed)", got)
	}
}

func TestCompileMissingMainIsError(t *testing.T) {
	_, err := robin.Compile(`fn helper() { return 1; }`)
	if err == nil {
		t.Fatal("expected an error for a program with no main")
	}
	ce, ok := err.(*robin.CompileError)
	if !ok {
		t.Fatalf("got %T, want *robin.CompileError", err)
	}
	if ce.Kind != robin.ErrMissingMain {
		t.Fatalf("got error kind %v, want ErrMissingMain", ce.Kind)
	}
}

func TestCompileArityMismatchIsError(t *testing.T) {
	_, err := robin.Compile(`
		fn add(a, b) { return a + b; }
		fn main() {
			var r = add(1);
		}
	`)
	var ce *robin.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("got %T, want *robin.CompileError", err)
	}
	if ce.Kind != robin.ErrArityMismatch {
		t.Fatalf("got error kind %v, want ErrArityMismatch", ce.Kind)
	}
}

func TestCompileUnresolvedIdentifierIsError(t *testing.T) {
	_, err := robin.Compile(`
		fn main() {
			var r = missing;
		}
	`)
	var ce *robin.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("got %T, want *robin.CompileError", err)
	}
	if ce.Kind != robin.ErrUnresolvedIdentifier {
		t.Fatalf("got error kind %v, want ErrUnresolvedIdentifier", ce.Kind)
	}
}

func TestLexUnterminatedStringIsLexError(t *testing.T) {
	_, err := robin.Lex(`"never closed`)
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
	if _, ok := err.(*robin.LexError); !ok {
		t.Fatalf("got %T, want *robin.LexError", err)
	}
}

func TestLexUnexpectedCharacterIsLexError(t *testing.T) {
	_, err := robin.Lex("a = 1 @ 2;")
	if err == nil {
		t.Fatal("expected an error for an unexpected character")
	}
	if _, ok := err.(*robin.LexError); !ok {
		t.Fatalf("got %T, want *robin.LexError", err)
	}
}

func TestParseUnexpectedTokenIsParseError(t *testing.T) {
	toks, err := robin.Lex(`fn main() { if }`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	_, err = robin.Parse(toks)
	if err == nil {
		t.Fatal("expected an error for a malformed if statement")
	}
	if _, ok := err.(*robin.ParseError); !ok {
		t.Fatalf("got %T, want *robin.ParseError", err)
	}
}

// TestCompileErrorKinds covers the shape and constant-initializer error kinds
// across a handful of sources that each trip exactly one of them.
func TestCompileErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind robin.ErrorKind
	}{
		{
			name: "address of constant",
			src: `
				const k = 1;
				fn main() {
					var p = &k;
				}
			`,
			kind: robin.ErrUnsupportedExpression,
		},
		{
			name: "constant references unknown name",
			src: `
				const k = missing;
				fn main() {}
			`,
			kind: robin.ErrUnsupportedConstant,
		},
		{
			name: "constant uses a comparison operator",
			src: `
				const k = 1 == 1;
				fn main() {}
			`,
			kind: robin.ErrUnsupportedConstant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := robin.Compile(tt.src)
			var ce *robin.CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("got %T, want *robin.CompileError: %v", err, err)
			}
			if ce.Kind != tt.kind {
				t.Fatalf("got error kind %v, want %v", ce.Kind, tt.kind)
			}
		})
	}
}

func TestCompileMainWithParamsIsError(t *testing.T) {
	_, err := robin.Compile(`fn main(x) {}`)
	ce, ok := err.(*robin.CompileError)
	if !ok {
		t.Fatalf("got %T, want *robin.CompileError", err)
	}
	if ce.Kind != robin.ErrMainHasParams {
		t.Fatalf("got error kind %v, want ErrMainHasParams", ce.Kind)
	}
}

func TestCompileRedeclaredLocalIsError(t *testing.T) {
	_, err := robin.Compile(`
		fn main() {
			var i = 0;
			var i = 1;
		}
	`)
	var ce *robin.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("got %T, want *robin.CompileError", err)
	}
	if ce.Kind != robin.ErrRedeclared {
		t.Fatalf("got error kind %v, want ErrRedeclared", ce.Kind)
	}
}
