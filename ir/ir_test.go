package ir_test

import (
	"testing"

	"github.com/Urethramancer/robinvm/ir"
)

func TestMovVariantSizes(t *testing.T) {
	cases := []struct {
		name string
		in   ir.Instruction
		size int
	}{
		{"MOV #1 &r0", ir.Mov{Src: ir.Literal(ir.Given(1)), Dst: ir.Given(0)}, 1},
		{"MOV #0x1234 &0x5678", ir.Mov{Src: ir.Literal(ir.Given(0x1234)), Dst: ir.Given(0x5678)}, 3},
		{"MOV &0x1000 &0x2000", ir.Mov{Src: ir.Address(ir.Given(0x1000)), Dst: ir.Given(0x2000)}, 3},
		{"MOV #0x1234 &r0", ir.Mov{Src: ir.Literal(ir.Given(0x1234)), Dst: ir.Given(0)}, 2},
	}
	for _, c := range cases {
		got := len(c.in.ToMachineCode())
		if got != c.size {
			t.Errorf("%s: got %d words, want %d", c.name, got, c.size)
		}
	}
}

// TestLengthStability exercises the assembler's core invariant: resolving
// a label can never change an instruction's encoded length, because an
// unresolved Value always reports 0xFFFF (the widest magnitude) until
// WithLabels substitutes the real address.
func TestLengthStability(t *testing.T) {
	instrs := []ir.Instruction{
		ir.Mov{Src: ir.Literal(ir.Label("x")), Dst: ir.Given(0)},
		ir.Jmp{Target: ir.Literal(ir.Label("x"))},
		ir.MathBinary{Op: ir.Add, Src: ir.Address(ir.Label("x")), Dst: ir.Given(2)},
		ir.JmpCmp{Op: ir.Eq, Src: ir.Given(0), SrcA: ir.Literal(ir.Given(1)), Target: ir.Literal(ir.Label("x"))},
	}
	labels := map[string]uint16{"x": 0x9000}
	for _, instr := range instrs {
		before := len(instr.ToMachineCode())
		after := len(instr.WithLabels(labels).ToMachineCode())
		if before != after {
			t.Errorf("%T: length changed across label resolution: %d -> %d", instr, before, after)
		}
	}
}

func TestUnresolvedLabelPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for unresolved label")
		}
		if _, ok := r.(ir.UnresolvedLabelError); !ok {
			t.Fatalf("expected ir.UnresolvedLabelError, got %T", r)
		}
	}()
	v := ir.Label("missing")
	v.WithLabels(map[string]uint16{})
}

func TestYieldEncoding(t *testing.T) {
	got := ir.Yield{}.ToMachineCode()
	if len(got) != 1 || got[0] != 0x0A00 {
		t.Fatalf("got %v, want [0x0A00]", got)
	}
}
