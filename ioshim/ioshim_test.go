package ioshim_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Urethramancer/robinvm/assembler"
	"github.com/Urethramancer/robinvm/cpu"
	"github.com/Urethramancer/robinvm/ioshim"
)

// assembleAndLoad is a small test helper: build a CPU with src loaded and
// ready to run at 0x8000.
func assembleAndLoad(t *testing.T, src string) *cpu.CPU {
	t.Helper()
	words, err := assembler.New().Assemble(src, 0x8000)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	c := cpu.New()
	c.LoadAt(0x8000, words)
	c.WriteWord(cpu.IP, 0x8000)
	return c
}

func TestShimPrintsNullTerminatedString(t *testing.T) {
	c := assembleAndLoad(t, `
		MOV #1 &0x12;
		MOV #0x68 &r0;
		YIELD;
		MOV #0x69 &r0;
		YIELD;
		MOV #0 &r0;
		YIELD;
		MOV #0 &0x12;
		YIELD;
	`)

	var out bytes.Buffer
	ioshim.New(c, strings.NewReader(""), &out).Run()

	if got := out.String(); got != "hi" {
		t.Fatalf("printed %q, want %q", got, "hi")
	}
}

func TestShimReadsLineIntoMemory(t *testing.T) {
	// Shares a single YIELD instruction between the per-character ack and
	// the final stop: the last character's ack yield is consumed inside
	// the shim's own read loop, and the extra lap through :done back to
	// :loop produces a second, distinct yield with SIGNAL back at 0 --
	// the one that ends Run().
	c := assembleAndLoad(t, `
		MOV #2 &0x12;
		:loop
		YIELD;
		JEZ &r0 #done;
		MOV &r0 &0x9000;
		JMP #loop;
		:done
		MOV #0 &0x12;
		JMP #loop;
	`)

	s := ioshim.New(c, strings.NewReader("x\n"), &bytes.Buffer{})
	s.Run()

	if got := c.ReadWord(0x9000); got != 'x' {
		t.Fatalf("mem[0x9000] = %d, want %d ('x')", got, 'x')
	}
	if got := c.ReadWord(0x12); got != 0 {
		t.Fatalf("SIGNAL left at %d, want 0", got)
	}
}
