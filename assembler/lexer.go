package assembler

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TokenKind distinguishes the lexical categories stage 1 produces.
type TokenKind int

const (
	TokKeyword TokenKind = iota
	TokLabelDef
	TokAddr
	TokLit
	TokNumber
	TokSemi
)

// Token is one lexed unit. Word/Num/IsLabel are only meaningful for
// TokAddr and TokLit: IsLabel true means Word names a label still to be
// resolved, false means Num already holds the numeric value.
type Token struct {
	Kind    TokenKind
	Word    string
	Num     uint16
	IsLabel bool
}

// LexError reports malformed input at stage 1, per the "token error"
// condition.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string {
	return errors.Errorf("token error at byte %d: %s", e.Pos, e.Msg).Error()
}

// Lex splits src into a token stream. String literals are expanded
// in-place into a run of immediate-literal tokens terminated by a zero
// literal, each ended with its own ';', before the rest of the source is
// tokenized around them.
func Lex(src string) ([]Token, error) {
	src = expandStrings(src)

	var toks []Token
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == ';':
			toks = append(toks, Token{Kind: TokSemi})
			i++
		case c == ':':
			j := i + 1
			for j < n && isWordByte(src[j]) {
				j++
			}
			if j == i+1 {
				return nil, &LexError{Pos: i, Msg: "empty label name"}
			}
			toks = append(toks, Token{Kind: TokLabelDef, Word: src[i+1 : j]})
			i = j
		case c == '&' || c == '#':
			kind := TokAddr
			if c == '#' {
				kind = TokLit
			}
			j := i + 1
			for j < n && isWordByte(src[j]) {
				j++
			}
			if j == i+1 {
				return nil, &LexError{Pos: i, Msg: "empty operand after '" + string(c) + "'"}
			}
			body := src[i+1 : j]
			tok, err := operandToken(kind, body)
			if err != nil {
				return nil, errors.Wrapf(err, "at byte %d", i)
			}
			toks = append(toks, tok)
			i = j
		case isWordByte(c):
			j := i
			for j < n && isWordByte(src[j]) {
				j++
			}
			word := src[i:j]
			lower := strings.ToLower(word)
			switch {
			case mnemonics[lower]:
				toks = append(toks, Token{Kind: TokKeyword, Word: lower})
			default:
				if tok, ok := registerToken(word); ok {
					toks = append(toks, tok)
				} else if isHexLiteral(word) {
					val, err := parseHex(word)
					if err != nil {
						return nil, errors.Wrapf(err, "at byte %d", i)
					}
					toks = append(toks, Token{Kind: TokNumber, Num: val})
				} else {
					return nil, &LexError{Pos: i, Msg: "unknown token " + strconv.Quote(word)}
				}
			}
			i = j
		default:
			return nil, &LexError{Pos: i, Msg: "unexpected character " + strconv.QuoteRune(rune(c))}
		}
	}
	return toks, nil
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// registerToken recognizes the rN register convention, identical in
// semantics to &000N: N is a single hex digit (r0..rF), not decimal. A
// word of any other length (including "reserve") never matches, so the
// RESERVE keyword still lexes as a keyword.
func registerToken(word string) (Token, bool) {
	if len(word) != 2 || (word[0] != 'r' && word[0] != 'R') {
		return Token{}, false
	}
	n, err := strconv.ParseUint(word[1:], 16, 16)
	if err != nil {
		return Token{}, false
	}
	return Token{Kind: TokAddr, Num: uint16(n)}, true
}

// operandToken parses the body of an &/# operand: a register name (rN,
// for & only, naming the same cell as a bare rN), a hex literal (with
// optional "0x" prefix) or a label name.
func operandToken(kind TokenKind, body string) (Token, error) {
	if kind == TokAddr {
		if tok, ok := registerToken(body); ok {
			return tok, nil
		}
	}
	if isHexLiteral(body) {
		n, err := parseHex(body)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: kind, Num: n}, nil
	}
	return Token{Kind: kind, Word: body, IsLabel: true}, nil
}

func isHexLiteral(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

func parseHex(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid hex literal %q", s)
	}
	return uint16(n), nil
}

// expandStrings rewrites each "..." literal into a run of #HEX; tokens (one
// per byte) terminated by #0;, matching the host's null-terminated string
// convention (see the I/O shim's SIGNAL=1 print protocol).
func expandStrings(src string) string {
	var b strings.Builder
	i, n := 0, len(src)
	for i < n {
		if src[i] == '"' {
			j := i + 1
			for j < n && src[j] != '"' {
				j++
			}
			body := src[i+1 : j]
			for _, ch := range []byte(body) {
				b.WriteString("#0x")
				b.WriteString(strconv.FormatUint(uint64(ch), 16))
				b.WriteString(";")
			}
			b.WriteString("#0;")
			if j < n {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(src[i])
		i++
	}
	return b.String()
}
