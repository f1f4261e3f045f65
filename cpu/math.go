package cpu

// execMath decodes and executes the ADD/SUB/MUL/AND/OR/XOR/SHL/SHR family
// (n0 in {1,2,3,0xB,0xC,0xD,0xE,0xF}), which carries both the binary form
// (dst = dst op src) and the ternary form (dst = a op b). The two forms
// share the same mode-nibble addressing scheme as MOV, but the mode space
// is split: 0/1 select binary (address/literal src), 2/3/4 select ternary
// (address-address, literal-address, address-literal).
func (c *CPU) execMath(ip uint16, op func(a, b uint16) uint16, n1, n2, n3 uint16) {
	switch {
	case n1 <= 1: // binary, short
		c.advance(1)
		c.binaryOp(op, n1, n2, n3)
	case n1 >= 2 && n1 <= 4: // ternary, short
		dst := c.ReadWord(ip + 1)
		c.advance(2)
		c.ternaryOp(op, n1, n2, n3, dst)
	case n1 == 0xC:
		if n2 <= 1 {
			w1 := c.ReadWord(ip + 1)
			c.advance(2)
			c.binaryOp(op, n2, n3, w1)
		} else {
			w1 := c.ReadWord(ip + 1)
			w2 := c.ReadWord(ip + 2)
			c.advance(3)
			c.ternaryOp(op, n2, n3, w1, w2)
		}
	case n1 == 0xD:
		if n2 <= 1 {
			w1 := c.ReadWord(ip + 1)
			c.advance(2)
			c.binaryOp(op, n2, w1, n3)
		} else {
			w1 := c.ReadWord(ip + 1)
			w2 := c.ReadWord(ip + 2)
			c.advance(3)
			c.ternaryOp(op, n2, w1, n3, w2)
		}
	case n1 == 0xE:
		w1 := c.ReadWord(ip + 1)
		w2 := c.ReadWord(ip + 2)
		c.advance(3)
		if n2 <= 1 {
			c.binaryOp(op, n2, w1, w2)
		} else {
			c.ternaryOp(op, n2, w2, w1, n3)
		}
	case n1 == 0xF: // ternary only; binary never needs a fourth word
		w1 := c.ReadWord(ip + 1)
		w2 := c.ReadWord(ip + 2)
		w3 := c.ReadWord(ip + 3)
		c.advance(4)
		c.ternaryOp(op, n2, w1, w2, w3)
	}
}

func (c *CPU) binaryOp(op func(a, b uint16) uint16, mode, src, dst uint16) {
	var operand uint16
	if mode == 0 {
		operand = c.ReadWord(src)
	} else {
		operand = src
	}
	c.WriteWord(dst, op(c.ReadWord(dst), operand))
}

func (c *CPU) ternaryOp(op func(a, b uint16) uint16, mode, srcA, src, dst uint16) {
	var a, b uint16
	switch mode {
	case 2: // address, address
		a, b = c.ReadWord(srcA), c.ReadWord(src)
	case 3: // literal, address
		a, b = srcA, c.ReadWord(src)
	case 4: // address, literal
		a, b = c.ReadWord(srcA), src
	}
	c.WriteWord(dst, op(a, b))
}
