package robin

import (
	"fmt"
)

// ParseError reports malformed token structure, the "Parse error" member
// of the compile error taxonomy.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("robin: parse error at byte %d: %s", e.Pos, e.Msg)
}

// Parse builds the AST for a full source file, grounded on the grammar
// original_source/src/robin/parser.rs sketches but never finishes: its
// parse_statement/parse_expression stubs cover only a handful of forms,
// so the expression precedence chain and the full statement set below
// are this module's own build-out of the grammar.
func Parse(toks []Token) ([]TopLevel, error) {
	p := &parser{toks: toks}
	var prog []TopLevel
	for !p.atEOF() {
		top, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog = append(prog, top)
	}
	return prog, nil
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) atEOF() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() Token {
	if p.atEOF() {
		return Token{Kind: TokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	t := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return t
}

func (p *parser) isKw(kw Keyword) bool {
	t := p.peek()
	return t.Kind == TokKeyword && t.Kw == kw
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	t := p.peek()
	if t.Kind != kind {
		return Token{}, &ParseError{Pos: t.Pos, Msg: fmt.Sprintf("expected %s, found %s", what, t.String())}
	}
	return p.advance(), nil
}

func (p *parser) expectKw(kw Keyword, what string) error {
	if !p.isKw(kw) {
		t := p.peek()
		return &ParseError{Pos: t.Pos, Msg: fmt.Sprintf("expected %s, found %s", what, t.String())}
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t, err := p.expect(TokIdent, "identifier")
	if err != nil {
		return "", err
	}
	return t.Ident, nil
}

func (p *parser) parseTopLevel() (TopLevel, error) {
	switch {
	case p.isKw(KwConst):
		p.advance()
		return p.parseConstOrGlobal(true)
	case p.isKw(KwGlobal):
		p.advance()
		return p.parseConstOrGlobal(false)
	case p.isKw(KwFn):
		p.advance()
		return p.parseFunction()
	default:
		t := p.peek()
		return nil, &ParseError{Pos: t.Pos, Msg: fmt.Sprintf("expected const, global or fn, found %s", t.String())}
	}
}

func (p *parser) parseConstOrGlobal(isConst bool) (TopLevel, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEq, "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	if isConst {
		return ConstDecl{Name: name, Expr: expr}, nil
	}
	return GlobalDecl{Name: name, Expr: expr}, nil
}

func (p *parser) parseFunction() (TopLevel, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	var params []string
	for p.peek().Kind != TokRParen {
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, pname)
		if p.peek().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return FunctionDecl{Name: name, Params: params, Body: body}, nil
}

func (p *parser) parseBlockBody() ([]Statement, error) {
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []Statement
	for p.peek().Kind != TokRBrace {
		if p.atEOF() {
			return nil, &ParseError{Pos: p.peek().Pos, Msg: "unterminated block"}
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	p.advance()
	return stmts, nil
}

func (p *parser) parseStatement() (Statement, error) {
	switch {
	case p.isKw(KwVar):
		return p.parseDeclaration()
	case p.isKw(KwIf):
		return p.parseBlock(BlockIf)
	case p.isKw(KwWhile):
		return p.parseBlock(BlockWhile)
	case p.isKw(KwReturn):
		return p.parseReturn()
	case p.peek().Kind == TokStar:
		return p.parseStarAssignment()
	case p.peek().Kind == TokIdent:
		return p.parseIdentStatement()
	default:
		t := p.peek()
		return nil, &ParseError{Pos: t.Pos, Msg: fmt.Sprintf("unexpected token %s in statement", t.String())}
	}
}

func (p *parser) parseDeclaration() (Statement, error) {
	p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var init Expression
	if p.peek().Kind == TokEq {
		p.advance()
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return Declaration{Name: name, Init: init}, nil
}

func (p *parser) parseBlock(bt BlockType) (Statement, error) {
	p.advance()
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	return Block{Type: bt, Cond: cond, Body: body}, nil
}

func (p *parser) parseReturn() (Statement, error) {
	p.advance()
	if p.peek().Kind == TokSemi {
		p.advance()
		return Return{}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return Return{Expr: expr}, nil
}

func (p *parser) parseStarAssignment() (Statement, error) {
	p.advance()
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEq, "'='"); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return StarAssignment{Lhs: lhs, Rhs: rhs}, nil
}

// assignOps maps every compound-assignment token to its AssignOp.
var assignOps = map[TokenKind]AssignOp{
	TokEq:      AssignSet,
	TokPlusEq:  AssignAdd,
	TokMinusEq: AssignSub,
	TokStarEq:  AssignMul,
	TokAndEq:   AssignAnd,
	TokOrEq:    AssignOr,
	TokXorEq:   AssignXor,
	TokShlEq:   AssignShl,
	TokShrEq:   AssignShr,
}

// parseIdentStatement disambiguates a call used as a statement from an
// assignment, both of which start with an identifier.
func (p *parser) parseIdentStatement() (Statement, error) {
	name := p.peek().Ident
	namePos := p.peek().Pos
	p.advance()
	if p.peek().Kind == TokLParen {
		call, err := p.parseCallArgs(name)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokSemi, "';'"); err != nil {
			return nil, err
		}
		return FunctionCallStmt{Call: call}, nil
	}
	op, ok := assignOps[p.peek().Kind]
	if !ok {
		return nil, &ParseError{Pos: namePos, Msg: fmt.Sprintf("expected assignment or call after %q, found %s", name, p.peek().String())}
	}
	p.advance()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return Assignment{Name: name, Op: op, Expr: expr}, nil
}

func (p *parser) parseCallArgs(name string) (FunctionCall, error) {
	p.advance() // '('
	var args []Expression
	for p.peek().Kind != TokRParen {
		arg, err := p.parseExpression()
		if err != nil {
			return FunctionCall{}, err
		}
		args = append(args, arg)
		if p.peek().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return FunctionCall{}, err
	}
	return FunctionCall{Name: name, Args: args}, nil
}

// Expression precedence, low to high: logical (&&, ||, ^^) -> comparison
// (==, !=, <, <=, >, >=) -> additive (+, -) -> multiplicative (*) ->
// bitwise (&, |, ^) -> shift (<<, >>) -> unary (!, *, &) -> primary.
func (p *parser) parseExpression() (Expression, error) { return p.parseLogical() }

func (p *parser) parseLogical() (Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.peek().Kind {
		case TokAnd:
			op = BinLogAnd
		case TokOr:
			op = BinLogOr
		case TokXor:
			op = BinLogXor
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseComparison() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	var op BinOp
	switch p.peek().Kind {
	case TokEqEq:
		op = BinEq
	case TokBangEq:
		op = BinNe
	case TokLt:
		op = BinLt
	case TokLtEq:
		op = BinLe
	case TokGt:
		op = BinGt
	case TokGtEq:
		op = BinGe
	default:
		return left, nil
	}
	p.advance()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return BinaryOp{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.peek().Kind {
		case TokPlus:
			op = BinAdd
		case TokMinus:
			op = BinSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMultiplicative() (Expression, error) {
	left, err := p.parseBitwise()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == TokStar {
		p.advance()
		right, err := p.parseBitwise()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: BinMul, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseBitwise() (Expression, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.peek().Kind {
		case TokAmp:
			op = BinBitAnd
		case TokPipe:
			op = BinBitOr
		case TokCaret:
			op = BinBitXor
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseShift() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.peek().Kind {
		case TokShl:
			op = BinShl
		case TokShr:
			op = BinShr
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Expression, error) {
	switch p.peek().Kind {
	case TokBang:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryOp{Op: UnNot, Expr: e}, nil
	case TokStar:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryOp{Op: UnDeref, Expr: e}, nil
	case TokAmp:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryOp{Op: UnAddress, Expr: e}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Expression, error) {
	t := p.peek()
	switch t.Kind {
	case TokInt:
		p.advance()
		return IntLit{Value: t.Int}, nil
	case TokString:
		p.advance()
		return StringLit{Value: t.Str}, nil
	case TokIdent:
		p.advance()
		if p.peek().Kind == TokLParen {
			return p.parseCallArgs(t.Ident)
		}
		return Ident{Name: t.Ident}, nil
	case TokLParen:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case TokLBracket:
		return p.parseArrayLit()
	default:
		return nil, &ParseError{Pos: t.Pos, Msg: fmt.Sprintf("expected expression, found %s", t.String())}
	}
}

func (p *parser) parseArrayLit() (Expression, error) {
	p.advance() // '['
	var vals []uint16
	for p.peek().Kind != TokRBracket {
		t := p.peek()
		if t.Kind != TokInt {
			return nil, &ParseError{Pos: t.Pos, Msg: fmt.Sprintf("expected integer literal in array, found %s", t.String())}
		}
		p.advance()
		vals = append(vals, t.Int)
		if p.peek().Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}
	return ArrayLit{Values: vals}, nil
}
