package assembler

import "github.com/Urethramancer/robinvm/ir"

// NodeType defines the type of a parsed assembly statement.
type NodeType int

const (
	// NodeLabel marks a label definition (":name").
	NodeLabel NodeType = iota
	// NodeInstruction carries one encodable ir.Instruction.
	NodeInstruction
	// NodeReserve reserves Count zero-filled words.
	NodeReserve
	// NodeRawWord inserts a single literal word.
	NodeRawWord
)

// Node is one parsed statement. Only the fields relevant to its Type are
// populated. Size is filled in by the layout pass, never by the parser, and
// is stable across passes because ir.Instruction.ToMachineCode's length
// depends only on operand magnitude, not on whether labels are resolved.
type Node struct {
	Type  NodeType
	Label string
	Instr ir.Instruction
	Count uint16
	Word  uint16
	Size  uint16
}
