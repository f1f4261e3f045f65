package cpu

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// DumpMemory writes a hex map of every non-zero 16-word row, skipping runs
// of all-zero rows with an ellipsis, in the same compact style as the
// reference interpreter's Debug implementation.
func (c *CPU) DumpMemory(w io.Writer) {
	lastShown := -1
	for row := 0; row < 0x1000; row++ {
		base := uint16(row << 4)
		empty := true
		for b := uint16(0); b < 0x10; b++ {
			if c.ReadWord(base+b) != 0 {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		if row-lastShown > 1 {
			fmt.Fprintln(w, "...")
		}
		lastShown = row
		fmt.Fprintf(w, "%04X", base)
		for b := uint16(0); b < 0x10; b++ {
			fmt.Fprintf(w, " %04X", c.ReadWord(base+b))
		}
		fmt.Fprintln(w)
	}
}

// DebugUntilYield behaves like UntilYield but dumps memory to w before each
// tick and logs an instruction-level trace entry whenever the logger's
// level is at or below debug, mirroring the bpf assembler's
// log.IsLevelEnabled(log.DebugLevel) guard around its own per-instruction
// trace calls.
func (c *CPU) DebugUntilYield(w io.Writer) {
	for c.ReadWord(Yield) == 0 {
		if c.Log != nil && c.Log.IsLevelEnabled(logrus.DebugLevel) {
			c.Log.WithField("ip", fmt.Sprintf("%04X", c.ReadWord(IP))).Debug("tick")
		}
		c.DumpMemory(w)
		c.Tick()
	}
	c.WriteWord(Yield, 0)
	c.DumpMemory(w)
}
