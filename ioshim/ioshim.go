// Package ioshim bridges the cpu package's cooperative yield protocol to a
// host's standard I/O: wherever the interpreter yields with a nonzero
// SIGNAL cell, the shim carries out the requested print-string or
// read-line transaction and resumes the guest, until a yield with SIGNAL
// still zero hands control back to the caller.
package ioshim

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/robinvm/cpu"
)

// Signal values the guest writes to cpu.Signal on yield.
const (
	signalStop  uint16 = 0
	signalPrint uint16 = 1
	signalRead  uint16 = 2
)

// r0 is the byte-at-a-time mailbox the print/read transactions share with
// the guest.
const r0 uint16 = 0x0000

// Shim wraps a *cpu.CPU and a pair of stdio-shaped streams, so a caller
// can wire real os.Stdin/os.Stdout in cmd/robinvm and a bytes.Buffer /
// strings.Reader in tests.
type Shim struct {
	CPU *cpu.CPU
	In  *bufio.Reader
	Out io.Writer
	Log *logrus.Logger
}

// New wraps c with the given input/output streams.
func New(c *cpu.CPU, in io.Reader, out io.Writer) *Shim {
	return &Shim{CPU: c, In: bufio.NewReader(in), Out: out, Log: logrus.StandardLogger()}
}

// Run resumes the guest until it yields with SIGNAL still zero: a
// terminating yield, as opposed to an in-protocol print/read transaction.
func (s *Shim) Run() {
	for {
		s.CPU.UntilYield()
		if !s.handleSignal() {
			return
		}
	}
}

// DebugRun behaves like Run but dumps memory around each yield via the
// cpu package's debug tracing path.
func (s *Shim) DebugRun(w io.Writer) {
	for {
		s.CPU.DebugUntilYield(w)
		if !s.handleSignal() {
			return
		}
	}
}

// handleSignal services one yield's SIGNAL value and reports whether the
// guest should keep running (true) or control should return to the
// caller (false, the SIGNAL==0 "stop" case).
func (s *Shim) handleSignal() bool {
	switch s.CPU.ReadWord(cpu.Signal) {
	case signalStop:
		return false
	case signalPrint:
		s.print()
	case signalRead:
		s.read()
	}
	s.CPU.WriteWord(cpu.Signal, 0)
	return true
}

// print drains the guest's null-terminated string out of r0, one
// character per yield, and writes it to Out.
func (s *Shim) print() {
	var out []byte
	for {
		ch := s.CPU.ReadWord(r0)
		if ch == 0 {
			break
		}
		out = append(out, byte(ch))
		s.CPU.UntilYield()
	}
	fmt.Fprint(s.Out, string(out))
}

// read pulls one line from In and feeds it to the guest a character per
// yield through r0, terminated by a zero word.
func (s *Shim) read() {
	line, _ := s.In.ReadString('\n')
	for _, ch := range stripNewline(line) {
		s.CPU.WriteWord(r0, uint16(ch))
		s.CPU.UntilYield()
	}
	s.CPU.WriteWord(r0, 0)
	s.CPU.UntilYield()
}

func stripNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
