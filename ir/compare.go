package ir

// JmpCmp encodes `if cmp(mem[Src], SrcA) jump to Target`. Cmp shares its
// word layout (four logical operands never fit in one word's three
// nibbles, so even the "short" form spends a second word on Target/Dst).
type JmpCmp struct {
	Op     CmpOp
	Src    Value
	SrcA   Item
	Target Item
}

func (j JmpCmp) mode() uint16 {
	switch {
	case !j.SrcA.IsLiteral() && !j.Target.IsLiteral():
		return 0
	case !j.SrcA.IsLiteral():
		return 1
	case !j.Target.IsLiteral():
		return 2
	default:
		return 3
	}
}

func (j JmpCmp) ToMachineCode() []uint16 {
	mode := j.mode()
	src, srcA, tgt := j.Src.Number(), j.SrcA.Number(), j.Target.Number()
	op := j.Op.FirstNibble()
	switch {
	case src <= 0xF && srcA <= 0xF:
		return []uint16{op | mode<<8 | src<<4 | srcA, tgt}
	case src <= 0xF:
		return []uint16{op | 0x0C00 | mode<<4 | src, srcA, tgt}
	case srcA <= 0xF:
		return []uint16{op | 0x0D00 | mode<<4 | srcA, src, tgt}
	case tgt <= 0xF:
		return []uint16{op | 0x0E00 | mode<<4 | tgt, src, srcA}
	default:
		return []uint16{op | 0x0F00 | mode<<4, src, srcA, tgt}
	}
}

func (j JmpCmp) WithLabels(labels map[string]uint16) Instruction {
	return JmpCmp{
		Op:     j.Op,
		Src:    j.Src.WithLabels(labels),
		SrcA:   j.SrcA.WithLabels(labels),
		Target: j.Target.WithLabels(labels),
	}
}

func (j JmpCmp) String() string {
	return "J" + j.Op.String() + " &" + j.Src.String() + " " + j.SrcA.String() + " " + j.Target.String() + ";"
}

// Cmp encodes `Dst = cmp(mem[Src], SrcA) ? 1 : 0`.
type Cmp struct {
	Op   CmpOp
	Src  Value
	SrcA Item
	Dst  Value
}

func (c Cmp) mode() uint16 {
	if c.SrcA.IsLiteral() {
		return 5
	}
	return 4
}

func (c Cmp) ToMachineCode() []uint16 {
	mode := c.mode()
	src, srcA, dst := c.Src.Number(), c.SrcA.Number(), c.Dst.Number()
	op := c.Op.FirstNibble()
	switch {
	case src <= 0xF && srcA <= 0xF:
		return []uint16{op | mode<<8 | src<<4 | srcA, dst}
	case src <= 0xF:
		return []uint16{op | 0x0C00 | mode<<4 | src, srcA, dst}
	case srcA <= 0xF:
		return []uint16{op | 0x0D00 | mode<<4 | srcA, src, dst}
	case dst <= 0xF:
		return []uint16{op | 0x0E00 | mode<<4 | dst, src, srcA}
	default:
		return []uint16{op | 0x0F00 | mode<<4, src, srcA, dst}
	}
}

func (c Cmp) WithLabels(labels map[string]uint16) Instruction {
	return Cmp{
		Op:   c.Op,
		Src:  c.Src.WithLabels(labels),
		SrcA: c.SrcA.WithLabels(labels),
		Dst:  c.Dst.WithLabels(labels),
	}
}

func (c Cmp) String() string {
	return "C" + c.Op.String() + " &" + c.Src.String() + " " + c.SrcA.String() + " &" + c.Dst.String() + ";"
}
