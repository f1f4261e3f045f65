package ir

import "github.com/Urethramancer/robinvm/cpu"

// Instruction is any of the eleven IR tags. ToMachineCode's length depends
// only on the tag and on whether each operand's numeric value fits in a
// nibble (0..=0xF) -- never on context -- which is what lets the assembler
// size a program before label addresses are known: label values report
// 0xFFFF (see Value.Number), always selecting the widest form, so sizing
// with labels unresolved and emitting with labels resolved agree on length.
type Instruction interface {
	ToMachineCode() []uint16
	WithLabels(labels map[string]uint16) Instruction
}

// Yield is the single encoded YIELD sentinel.
type Yield struct{}

func (Yield) ToMachineCode() []uint16 { return []uint16{cpu.YieldInstruction} }

func (y Yield) WithLabels(map[string]uint16) Instruction { return y }

func (Yield) String() string { return "YIELD;" }
