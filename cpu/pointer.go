package cpu

// execPointer decodes and executes the n0=0xA family: PTRREAD (dst =
// mem[mem[src]]) and PTRWRITE (mem[mem[dst]] = src). The mode nibble
// selects which and, for PTRREAD, whether src and dst name the same
// address (a common single-operand dereference-in-place idiom). A
// historical NOT instruction occupied part of this nibble space in an
// earlier revision of the ISA; nothing in this assembler or Robin lowering
// ever emits it, so it is not decoded here.
func (c *CPU) execPointer(ip, n1, n2, n3 uint16) {
	switch {
	case n1 == 0: // PTRREAD, same address, short
		c.advance(1)
		c.ptrreadSame(n2)
	case n1 == 1: // PTRREAD, distinct addresses, short
		c.advance(1)
		c.ptrread(n2, n3)
	case n1 == 2 || n1 == 3: // PTRWRITE, short
		c.advance(1)
		c.ptrwrite(n1, n2, n3)
	case n1 == 0xD:
		w1 := c.ReadWord(ip + 1)
		c.advance(2)
		if n2 == 1 {
			c.ptrread(n3, w1)
		} else {
			c.ptrwrite(n2, n3, w1)
		}
	case n1 == 0xE:
		w1 := c.ReadWord(ip + 1)
		c.advance(2)
		switch n2 {
		case 0:
			c.ptrreadSame(w1)
		case 1:
			c.ptrread(w1, n3)
		default:
			c.ptrwrite(n2, w1, n3)
		}
	case n1 == 0xF:
		w1 := c.ReadWord(ip + 1)
		w2 := c.ReadWord(ip + 2)
		c.advance(3)
		if n2 == 1 {
			c.ptrread(w1, w2)
		} else {
			c.ptrwrite(n2, w1, w2)
		}
	}
}

func (c *CPU) ptrreadSame(addr uint16) {
	c.WriteWord(addr, c.ReadWord(c.ReadWord(addr)))
}

func (c *CPU) ptrread(src, dst uint16) {
	c.WriteWord(dst, c.ReadWord(c.ReadWord(src)))
}

func (c *CPU) ptrwrite(mode, src, dst uint16) {
	var val uint16
	if mode == 2 {
		val = c.ReadWord(src)
	} else {
		val = src
	}
	c.WriteWord(c.ReadWord(dst), val)
}
