package disassembler_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Urethramancer/robinvm/assembler"
	"github.com/Urethramancer/robinvm/disassembler"
)

func assembleAndDisassemble(t *testing.T, src string) []disassembler.Line {
	t.Helper()
	words, err := assembler.New().Assemble(src, assembler.DefaultBase)
	if err != nil {
		t.Fatalf("Assemble(%q): %v", src, err)
	}
	return disassembler.Disassemble(words, assembler.DefaultBase)
}

func TestDisassembleRoundTripsShortForms(t *testing.T) {
	lines := assembleAndDisassemble(t, `MOV #1 r0; ADD #2 r0; CEQ &r0 #3 r1; JMP #0x10;`)
	want := []disassembler.Line{
		{Addr: assembler.DefaultBase, Text: "MOV #0001 &0000;"},
		{Addr: assembler.DefaultBase + 1, Text: "ADD #0002 &0000;"},
		{Addr: assembler.DefaultBase + 2, Text: "CEQ &0000 #0003 &0001;"},
		{Addr: assembler.DefaultBase + 4, Text: "JMP #0010;"},
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("decoded lines mismatch (-want +got):\n%s", diff)
	}
}

func TestDisassembleWideOperands(t *testing.T) {
	lines := assembleAndDisassemble(t, `MOV #0x1234 &0x5678;`)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %+v", len(lines), lines)
	}
	if !strings.Contains(lines[0].Text, "1234") || !strings.Contains(lines[0].Text, "5678") {
		t.Fatalf("line = %q, want operands 1234 and 5678", lines[0].Text)
	}
}

func TestDisassembleYield(t *testing.T) {
	lines := assembleAndDisassemble(t, `YIELD;`)
	if len(lines) != 1 || lines[0].Text != "YIELD;" {
		t.Fatalf("got %+v, want a single YIELD; line", lines)
	}
}

func TestDisassembleAddressAnnotatesEachLine(t *testing.T) {
	lines := assembleAndDisassemble(t, `MOV #1 r0; MOV #2 r1;`)
	if lines[0].Addr != assembler.DefaultBase {
		t.Fatalf("first line addr = %04X, want %04X", lines[0].Addr, assembler.DefaultBase)
	}
	if lines[1].Addr != assembler.DefaultBase+1 {
		t.Fatalf("second line addr = %04X, want %04X", lines[1].Addr, assembler.DefaultBase+1)
	}
}
