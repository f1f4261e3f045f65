package assembler

import (
	"github.com/pkg/errors"

	"github.com/Urethramancer/robinvm/ir"
)

// mnemonics lists every bare keyword stage 1 recognizes, so the lexer can
// tell "add" (a mnemonic whose letters all happen to be valid hex digits)
// apart from a genuine bare hex literal.
var mnemonics = map[string]bool{
	"mov": true, "swp": true, "jmp": true, "jez": true, "jnz": true,
	"add": true, "sub": true, "mul": true, "and": true, "or": true,
	"xor": true, "shl": true, "shr": true,
	"ceq": true, "cne": true, "clt": true, "cle": true, "cgt": true, "cge": true,
	"jeq": true, "jne": true, "jlt": true, "jle": true, "jgt": true, "jge": true,
	"ptrread": true, "ptrwrite": true, "yield": true, "reserve": true,
}

var cmpOps = map[string]ir.CmpOp{
	"eq": ir.Eq, "ne": ir.Ne, "lt": ir.Lt, "le": ir.Le, "gt": ir.Gt, "ge": ir.Ge,
}

var mathOps = map[string]ir.MathOp{
	"add": ir.Add, "sub": ir.Sub, "mul": ir.Mul, "and": ir.And,
	"or": ir.Or, "xor": ir.Xor, "shl": ir.Shl, "shr": ir.Shr,
}

// SyntaxError reports a stage 2 parse failure. Msg names what was
// expected; the unmatched token suffix is not carried.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return errors.Errorf("syntax error: %s", e.Msg).Error() }

// parser walks a token stream and emits Nodes.
type parser struct {
	toks []Token
	pos  int
}

// Parse turns a lexed token stream into the statement list stage 3 walks.
func Parse(toks []Token) ([]Node, error) {
	p := &parser{toks: toks}
	var nodes []Node
	for !p.atEnd() {
		n, err := p.statement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (Token, bool) {
	if p.atEnd() {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (Token, error) {
	t, ok := p.peek()
	if !ok {
		return Token{}, &SyntaxError{Msg: "unexpected end of input"}
	}
	p.pos++
	return t, nil
}

func (p *parser) expectSemi() error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.Kind != TokSemi {
		return &SyntaxError{Msg: "expected ';'"}
	}
	return nil
}

// operandsUntilSemi collects every Addr/Lit/Number token up to (and
// consuming) the terminating ';'.
func (p *parser) operandsUntilSemi() ([]Token, error) {
	var ops []Token
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == TokSemi {
			return ops, nil
		}
		if t.Kind == TokKeyword || t.Kind == TokLabelDef {
			return nil, &SyntaxError{Msg: "unexpected token " + t.Word + " before ';'"}
		}
		ops = append(ops, t)
	}
}

func tokValue(t Token) ir.Value {
	if t.IsLabel {
		return ir.Label(t.Word)
	}
	return ir.Given(t.Num)
}

// tokItem wraps an Addr or Lit token as the matching ir.Item kind. Bare
// Number tokens are not valid instruction operands.
func tokItem(t Token) (ir.Item, error) {
	switch t.Kind {
	case TokAddr:
		return ir.Address(tokValue(t)), nil
	case TokLit:
		return ir.Literal(tokValue(t)), nil
	default:
		return ir.Item{}, &SyntaxError{Msg: "expected an operand"}
	}
}

// tokAddrValue requires an Addr-kind operand, for positions (Swp operands,
// Mov/math/compare destinations) that are always a bare address.
func tokAddrValue(t Token) (ir.Value, error) {
	if t.Kind != TokAddr {
		return ir.Value{}, &SyntaxError{Msg: "expected an address operand ('&' or 'rN')"}
	}
	return tokValue(t), nil
}

func (p *parser) statement() (Node, error) {
	t, err := p.next()
	if err != nil {
		return Node{}, err
	}

	switch t.Kind {
	case TokLabelDef:
		return Node{Type: NodeLabel, Label: t.Word}, nil

	case TokNumber:
		if err := p.expectSemi(); err != nil {
			return Node{}, err
		}
		return Node{Type: NodeRawWord, Word: t.Num}, nil

	case TokLit:
		// A lone immediate statement, as produced by string-literal
		// expansion, carries the same numeric word a bare Number would.
		if err := p.expectSemi(); err != nil {
			return Node{}, err
		}
		if t.IsLabel {
			return Node{}, &SyntaxError{Msg: "raw word cannot reference an unresolved label"}
		}
		return Node{Type: NodeRawWord, Word: t.Num}, nil

	case TokKeyword:
		return p.instruction(t.Word)

	default:
		return Node{}, &SyntaxError{Msg: "unexpected token to start a statement"}
	}
}

func (p *parser) instruction(kw string) (Node, error) {
	if kw == "reserve" {
		ops, err := p.operandsUntilSemi()
		if err != nil {
			return Node{}, err
		}
		if len(ops) != 1 || ops[0].Kind != TokNumber {
			return Node{}, &SyntaxError{Msg: "RESERVE takes exactly one bare count"}
		}
		return Node{Type: NodeReserve, Count: ops[0].Num}, nil
	}

	instr, err := buildInstruction(kw, p)
	if err != nil {
		return Node{}, err
	}
	return Node{Type: NodeInstruction, Instr: instr}, nil
}

// buildInstruction dispatches on mnemonic and consumes exactly the operand
// tokens that mnemonic needs, through the closing ';'.
func buildInstruction(kw string, p *parser) (ir.Instruction, error) {
	ops, err := p.operandsUntilSemi()
	if err != nil {
		return nil, err
	}

	switch kw {
	case "mov":
		if len(ops) != 2 {
			return nil, &SyntaxError{Msg: "MOV takes 2 operands"}
		}
		src, err := tokItem(ops[0])
		if err != nil {
			return nil, err
		}
		dst, err := tokAddrValue(ops[1])
		if err != nil {
			return nil, err
		}
		return ir.Mov{Src: src, Dst: dst}, nil

	case "swp":
		if len(ops) != 2 {
			return nil, &SyntaxError{Msg: "SWP takes 2 operands"}
		}
		a, err := tokAddrValue(ops[0])
		if err != nil {
			return nil, err
		}
		b, err := tokAddrValue(ops[1])
		if err != nil {
			return nil, err
		}
		return ir.Swp{A: a, B: b}, nil

	case "jmp":
		if len(ops) != 1 {
			return nil, &SyntaxError{Msg: "JMP takes 1 operand"}
		}
		target, err := tokItem(ops[0])
		if err != nil {
			return nil, err
		}
		return ir.Jmp{Target: target}, nil

	case "jez", "jnz":
		if len(ops) != 2 {
			return nil, &SyntaxError{Msg: kw + " takes 2 operands"}
		}
		cond, err := tokAddrValue(ops[0])
		if err != nil {
			return nil, err
		}
		target, err := tokItem(ops[1])
		if err != nil {
			return nil, err
		}
		return ir.Jcmpz{IsEq: kw == "jez", Cond: cond, Target: target}, nil

	case "ptrread":
		if len(ops) != 2 {
			return nil, &SyntaxError{Msg: "PTRREAD takes 2 operands"}
		}
		src, err := tokAddrValue(ops[0])
		if err != nil {
			return nil, err
		}
		dst, err := tokAddrValue(ops[1])
		if err != nil {
			return nil, err
		}
		return ir.Ptrread{Src: src, Dst: dst}, nil

	case "ptrwrite":
		if len(ops) != 2 {
			return nil, &SyntaxError{Msg: "PTRWRITE takes 2 operands"}
		}
		src, err := tokItem(ops[0])
		if err != nil {
			return nil, err
		}
		dst, err := tokAddrValue(ops[1])
		if err != nil {
			return nil, err
		}
		return ir.Ptrwrite{Src: src, Dst: dst}, nil

	case "yield":
		if len(ops) != 0 {
			return nil, &SyntaxError{Msg: "YIELD takes no operands"}
		}
		return ir.Yield{}, nil
	}

	if op, ok := mathOps[kw]; ok {
		switch len(ops) {
		case 2:
			src, err := tokItem(ops[0])
			if err != nil {
				return nil, err
			}
			dst, err := tokAddrValue(ops[1])
			if err != nil {
				return nil, err
			}
			return ir.MathBinary{Op: op, Src: src, Dst: dst}, nil
		case 3:
			a, err := tokItem(ops[0])
			if err != nil {
				return nil, err
			}
			b, err := tokItem(ops[1])
			if err != nil {
				return nil, err
			}
			dst, err := tokAddrValue(ops[2])
			if err != nil {
				return nil, err
			}
			return ir.MathTernary{Op: op, A: a, B: b, Dst: dst}, nil
		default:
			return nil, &SyntaxError{Msg: kw + " takes 2 or 3 operands"}
		}
	}

	if op, ok := cmpOp(kw); ok {
		if len(ops) != 3 {
			return nil, &SyntaxError{Msg: kw + " takes 3 operands"}
		}
		src, err := tokAddrValue(ops[0])
		if err != nil {
			return nil, err
		}
		srcA, err := tokItem(ops[1])
		if err != nil {
			return nil, err
		}
		dst, err := tokAddrValue(ops[2])
		if err != nil {
			return nil, err
		}
		return ir.Cmp{Op: op, Src: src, SrcA: srcA, Dst: dst}, nil
	}

	if op, ok := jmpCmpOp(kw); ok {
		if len(ops) != 3 {
			return nil, &SyntaxError{Msg: "J" + kw + " takes 3 operands"}
		}
		src, err := tokAddrValue(ops[0])
		if err != nil {
			return nil, err
		}
		srcA, err := tokItem(ops[1])
		if err != nil {
			return nil, err
		}
		target, err := tokItem(ops[2])
		if err != nil {
			return nil, err
		}
		return ir.JmpCmp{Op: op, Src: src, SrcA: srcA, Target: target}, nil
	}

	return nil, &SyntaxError{Msg: "unknown mnemonic " + kw}
}

// cmpOp maps the "c" + comparison mnemonics (ceq, cne, ...).
func cmpOp(kw string) (ir.CmpOp, bool) {
	if len(kw) != 3 || kw[0] != 'c' {
		return 0, false
	}
	op, ok := cmpOps[kw[1:]]
	return op, ok
}

// jmpCmpOp maps the "j" + comparison mnemonics (jeq, jne, ...) distinct
// from the "c" + comparison mnemonics handled above.
func jmpCmpOp(kw string) (ir.CmpOp, bool) {
	if len(kw) != 3 || kw[0] != 'j' {
		return 0, false
	}
	op, ok := cmpOps[kw[1:]]
	return op, ok
}
