package disassembler

import (
	"github.com/Urethramancer/robinvm/cpu"
	"github.com/Urethramancer/robinvm/ir"
)

// decodeOne reconstructs the ir.Instruction that produced words[i], plus
// its size in words, by running the cpu package's nibble dispatch in
// reverse. It panics on a short read (fewer words remain than the
// instruction's extension form needs), which Disassemble turns into a
// trailing raw-word line instead of a crash.
func decodeOne(words []uint16, i int) (ir.Instruction, int) {
	instr := words[i]
	if instr == cpu.YieldInstruction {
		return ir.Yield{}, 1
	}

	n0, n1, n2, n3 := nibbles(instr)
	switch {
	case n0 == 0x0:
		return decodeMovJmp(words, i, n1, n2, n3)
	case n0 == 0xA:
		return decodePointer(words, i, n1, n2, n3)
	case isCmpOpcode(n0):
		return decodeCmp(words, i, cmpOpFor(n0), n1, n2, n3)
	default:
		return decodeMath(words, i, mathOpFor(n0), n1, n2, n3)
	}
}

func nibbles(instr uint16) (n0, n1, n2, n3 uint16) {
	return instr >> 12, (instr >> 8) & 0xF, (instr >> 4) & 0xF, instr & 0xF
}

func isCmpOpcode(n0 uint16) bool { return n0 >= 0x4 && n0 <= 0x9 }

func cmpOpFor(n0 uint16) ir.CmpOp {
	return [...]ir.CmpOp{ir.Eq, ir.Ne, ir.Lt, ir.Le, ir.Gt, ir.Ge}[n0-0x4]
}

func mathOpFor(n0 uint16) ir.MathOp {
	switch n0 {
	case 0x1:
		return ir.Add
	case 0x2:
		return ir.Sub
	case 0x3:
		return ir.Mul
	case 0xB:
		return ir.And
	case 0xC:
		return ir.Or
	case 0xD:
		return ir.Xor
	case 0xE:
		return ir.Shl
	default: // 0xF
		return ir.Shr
	}
}

func addrOrLit(addr bool, v uint16) ir.Item {
	if addr {
		return ir.Address(ir.Given(v))
	}
	return ir.Literal(ir.Given(v))
}

func decodeMovJmp(words []uint16, i int, n1, n2, n3 uint16) (ir.Instruction, int) {
	switch {
	case n1 <= 1:
		return ir.Mov{Src: addrOrLit(n1 == 0, n2), Dst: ir.Given(n3)}, 1
	case n1 == 2:
		return ir.Swp{A: ir.Given(n2), B: ir.Given(n3)}, 1
	case n1 == 3 || n1 == 4:
		return ir.Jmp{Target: addrOrLit(n1 == 3, n2)}, 1
	case n1 >= 5 && n1 <= 8:
		return jcmpz(n1, n2, n3), 1
	case n1 == 0xD:
		w1 := words[i+1]
		switch {
		case n2 <= 1:
			return ir.Mov{Src: addrOrLit(n2 == 0, n3), Dst: ir.Given(w1)}, 2
		case n2 == 2:
			return ir.Swp{A: ir.Given(n3), B: ir.Given(w1)}, 2
		default:
			return jcmpzWide(n2, n3, w1), 2
		}
	case n1 == 0xE:
		w1 := words[i+1]
		switch {
		case n2 <= 1:
			return ir.Mov{Src: addrOrLit(n2 == 0, w1), Dst: ir.Given(n3)}, 2
		case n2 == 2:
			return ir.Swp{A: ir.Given(w1), B: ir.Given(n3)}, 2
		case n2 == 3 || n2 == 4:
			return ir.Jmp{Target: addrOrLit(n2 == 3, w1)}, 2
		default:
			return jcmpzWide(n2, w1, n3), 2
		}
	default: // n1 == 0xF
		w1, w2 := words[i+1], words[i+2]
		switch {
		case n2 <= 1:
			return ir.Mov{Src: addrOrLit(n2 == 0, w1), Dst: ir.Given(w2)}, 3
		case n2 == 2:
			return ir.Swp{A: ir.Given(w1), B: ir.Given(w2)}, 3
		default:
			return jcmpzWide(n2, w1, w2), 3
		}
	}
}

func jcmpz(mode, cond, target uint16) ir.Instruction {
	return jcmpzWide(mode, cond, target)
}

func jcmpzWide(mode, cond, target uint16) ir.Instruction {
	isEq := mode == 5 || mode == 6
	addr := mode == 5 || mode == 7
	return ir.Jcmpz{IsEq: isEq, Cond: ir.Given(cond), Target: addrOrLit(addr, target)}
}

func decodeMath(words []uint16, i int, op ir.MathOp, n1, n2, n3 uint16) (ir.Instruction, int) {
	switch {
	case n1 <= 1:
		return ir.MathBinary{Op: op, Src: addrOrLit(n1 == 0, n2), Dst: ir.Given(n3)}, 1
	case n1 >= 2 && n1 <= 4:
		dst := words[i+1]
		return mathTernary(op, n1, n2, n3, dst), 2
	case n1 == 0xC:
		w1 := words[i+1]
		if n2 <= 1 {
			return ir.MathBinary{Op: op, Src: addrOrLit(n2 == 0, n3), Dst: ir.Given(w1)}, 2
		}
		w2 := words[i+2]
		return mathTernary(op, n2, n3, w1, w2), 3
	case n1 == 0xD:
		w1 := words[i+1]
		if n2 <= 1 {
			return ir.MathBinary{Op: op, Src: addrOrLit(n2 == 0, w1), Dst: ir.Given(n3)}, 2
		}
		w2 := words[i+2]
		return mathTernary(op, n2, w1, n3, w2), 3
	case n1 == 0xE:
		w1, w2 := words[i+1], words[i+2]
		if n2 <= 1 {
			return ir.MathBinary{Op: op, Src: addrOrLit(n2 == 0, w1), Dst: ir.Given(w2)}, 3
		}
		return mathTernary(op, n2, w2, w1, n3), 3
	default: // n1 == 0xF
		w1, w2, w3 := words[i+1], words[i+2], words[i+3]
		return mathTernary(op, n2, w1, w2, w3), 4
	}
}

func mathTernary(op ir.MathOp, mode, srcA, src, dst uint16) ir.Instruction {
	var a, b ir.Item
	switch mode {
	case 2:
		a, b = ir.Address(ir.Given(srcA)), ir.Address(ir.Given(src))
	case 3:
		a, b = ir.Literal(ir.Given(srcA)), ir.Address(ir.Given(src))
	default: // 4
		a, b = ir.Address(ir.Given(srcA)), ir.Literal(ir.Given(src))
	}
	return ir.MathTernary{Op: op, A: a, B: b, Dst: ir.Given(dst)}
}

func decodeCmp(words []uint16, i int, op ir.CmpOp, n1, n2, n3 uint16) (ir.Instruction, int) {
	switch {
	case n1 <= 5:
		third := words[i+1]
		return cmpDispatch(op, n1, n2, n3, third), 2
	case n1 == 0xC:
		w1, w2 := words[i+1], words[i+2]
		return cmpDispatch(op, n2, n3, w1, w2), 3
	case n1 == 0xD:
		w1, w2 := words[i+1], words[i+2]
		return cmpDispatch(op, n2, w1, n3, w2), 3
	case n1 == 0xE:
		w1, w2 := words[i+1], words[i+2]
		return cmpDispatch(op, n2, w1, w2, n3), 3
	default: // n1 == 0xF
		w1, w2, w3 := words[i+1], words[i+2], words[i+3]
		return cmpDispatch(op, n2, w1, w2, w3), 4
	}
}

func cmpDispatch(op ir.CmpOp, mode, src, srcA, third uint16) ir.Instruction {
	switch mode {
	case 0:
		return ir.JmpCmp{Op: op, Src: ir.Given(src), SrcA: ir.Address(ir.Given(srcA)), Target: ir.Address(ir.Given(third))}
	case 1:
		return ir.JmpCmp{Op: op, Src: ir.Given(src), SrcA: ir.Address(ir.Given(srcA)), Target: ir.Literal(ir.Given(third))}
	case 2:
		return ir.JmpCmp{Op: op, Src: ir.Given(src), SrcA: ir.Literal(ir.Given(srcA)), Target: ir.Address(ir.Given(third))}
	case 3:
		return ir.JmpCmp{Op: op, Src: ir.Given(src), SrcA: ir.Literal(ir.Given(srcA)), Target: ir.Literal(ir.Given(third))}
	case 4:
		return ir.Cmp{Op: op, Src: ir.Given(src), SrcA: ir.Address(ir.Given(srcA)), Dst: ir.Given(third)}
	default: // 5
		return ir.Cmp{Op: op, Src: ir.Given(src), SrcA: ir.Literal(ir.Given(srcA)), Dst: ir.Given(third)}
	}
}

func decodePointer(words []uint16, i int, n1, n2, n3 uint16) (ir.Instruction, int) {
	switch {
	case n1 == 0:
		return ir.Ptrread{Src: ir.Given(n2), Dst: ir.Given(n2)}, 1
	case n1 == 1:
		return ir.Ptrread{Src: ir.Given(n2), Dst: ir.Given(n3)}, 1
	case n1 == 2 || n1 == 3:
		return ir.Ptrwrite{Src: addrOrLit(n1 == 2, n2), Dst: ir.Given(n3)}, 1
	case n1 == 0xD:
		w1 := words[i+1]
		if n2 == 1 {
			return ir.Ptrread{Src: ir.Given(n3), Dst: ir.Given(w1)}, 2
		}
		return ir.Ptrwrite{Src: addrOrLit(n2 == 2, n3), Dst: ir.Given(w1)}, 2
	case n1 == 0xE:
		w1 := words[i+1]
		switch n2 {
		case 0:
			return ir.Ptrread{Src: ir.Given(w1), Dst: ir.Given(w1)}, 2
		case 1:
			return ir.Ptrread{Src: ir.Given(w1), Dst: ir.Given(n3)}, 2
		default:
			return ir.Ptrwrite{Src: addrOrLit(n2 == 2, w1), Dst: ir.Given(n3)}, 2
		}
	default: // n1 == 0xF
		w1, w2 := words[i+1], words[i+2]
		if n2 == 1 {
			return ir.Ptrread{Src: ir.Given(w1), Dst: ir.Given(w2)}, 3
		}
		return ir.Ptrwrite{Src: addrOrLit(n2 == 2, w1), Dst: ir.Given(w2)}, 3
	}
}
