// Package cpu implements the fetch-decode-execute loop for the 16-bit
// word-addressed machine: a flat 64K-word memory, a handful of reserved
// control cells, and a nibble-dispatched instruction set.
package cpu

import "github.com/sirupsen/logrus"

// Reserved memory cells. Everything else is just memory, including the
// general-purpose "registers" r0-rF at addresses 0x0000-0x000F.
const (
	// IP is the instruction pointer: the word address of the next instruction.
	IP uint16 = 0x0010
	// Yield is set to 1 by the YIELD opcode (or any MOV targeting it) to
	// signal the host that the guest wants to surrender control.
	Yield uint16 = 0x0011
	// Signal is used by the I/O shim's read/print/terminate handshake.
	Signal uint16 = 0x0012

	// YieldInstruction is the single encoded word that means "yield".
	YieldInstruction uint16 = 0x0A00
)

// CPU holds the entire machine state: one flat array of 16-bit words.
type CPU struct {
	Mem [0x10000]uint16

	// Log receives debug traces from DebugUntilYield. Defaults to a
	// standard logrus logger at info level.
	Log *logrus.Logger
}

// New returns a zeroed CPU ready to have a program loaded into it.
func New() *CPU {
	return &CPU{Log: logrus.StandardLogger()}
}

// ReadWord returns the word stored at idx.
func (c *CPU) ReadWord(idx uint16) uint16 {
	return c.Mem[idx]
}

// WriteWord stores value at idx.
func (c *CPU) WriteWord(idx, value uint16) {
	c.Mem[idx] = value
}

// LoadAt bulk-loads data into memory starting at addr, wrapping the index
// around the 16-bit address space the same way every other access does.
func (c *CPU) LoadAt(addr uint16, data []uint16) {
	for i, word := range data {
		c.Mem[addr+uint16(i)] = word
	}
}

// LoadStringAt widens each character of s to a word and loads it starting
// at addr, followed by a zero terminator. It returns the address one past
// the terminator.
func (c *CPU) LoadStringAt(addr uint16, s string) uint16 {
	idx := addr
	for _, r := range s {
		c.Mem[idx] = uint16(r)
		idx++
	}
	c.Mem[idx] = 0
	return idx + 1
}

// Tick executes exactly one instruction.
func (c *CPU) Tick() {
	ip := c.ReadWord(IP)
	if ip == IP {
		// Uninitialized IP: never progress.
		return
	}

	instr := c.ReadWord(ip)
	if instr == YieldInstruction {
		c.WriteWord(Yield, 1)
		c.advance(1)
		return
	}

	n0, n1, n2, n3 := nibbles(instr)
	switch n0 {
	case 0x0:
		c.execMovJmp(ip, n1, n2, n3)
	case 0x1:
		c.execMath(ip, addU16, n1, n2, n3)
	case 0x2:
		c.execMath(ip, subU16, n1, n2, n3)
	case 0x3:
		c.execMath(ip, mulU16, n1, n2, n3)
	case 0x4:
		c.execCmp(ip, eqU16, n1, n2, n3)
	case 0x5:
		c.execCmp(ip, neU16, n1, n2, n3)
	case 0x6:
		c.execCmp(ip, ltU16, n1, n2, n3)
	case 0x7:
		c.execCmp(ip, leU16, n1, n2, n3)
	case 0x8:
		c.execCmp(ip, gtU16, n1, n2, n3)
	case 0x9:
		c.execCmp(ip, geU16, n1, n2, n3)
	case 0xA:
		c.execPointer(ip, n1, n2, n3)
	case 0xB:
		c.execMath(ip, andU16, n1, n2, n3)
	case 0xC:
		c.execMath(ip, orU16, n1, n2, n3)
	case 0xD:
		c.execMath(ip, xorU16, n1, n2, n3)
	case 0xE:
		c.execMath(ip, shlU16, n1, n2, n3)
	case 0xF:
		c.execMath(ip, shrU16, n1, n2, n3)
	}
}

// UntilYield ticks until the guest sets the Yield cell, then clears it.
func (c *CPU) UntilYield() {
	for c.ReadWord(Yield) == 0 {
		c.Tick()
	}
	c.WriteWord(Yield, 0)
}

func (c *CPU) advance(n uint16) {
	c.WriteWord(IP, c.ReadWord(IP)+n)
}

func nibbles(instr uint16) (n0, n1, n2, n3 uint16) {
	return instr >> 12, (instr >> 8) & 0xF, (instr >> 4) & 0xF, instr & 0xF
}

func addU16(a, b uint16) uint16  { return a + b }
func subU16(a, b uint16) uint16  { return a - b }
func mulU16(a, b uint16) uint16  { return a * b }
func andU16(a, b uint16) uint16  { return a & b }
func orU16(a, b uint16) uint16   { return a | b }
func xorU16(a, b uint16) uint16  { return a ^ b }
func shlU16(a, b uint16) uint16  { return a << b }
func shrU16(a, b uint16) uint16  { return a >> b }
func eqU16(a, b uint16) bool     { return a == b }
func neU16(a, b uint16) bool     { return a != b }
func ltU16(a, b uint16) bool     { return a < b }
func leU16(a, b uint16) bool     { return a <= b }
func gtU16(a, b uint16) bool     { return a > b }
func geU16(a, b uint16) bool     { return a >= b }
