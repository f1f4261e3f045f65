package cpu_test

import (
	"testing"

	"github.com/Urethramancer/robinvm/cpu"
	"github.com/Urethramancer/robinvm/ir"
)

// TestFibonacciYields loads a tight loop of ADD &r1,&r0; SWP r0,r1; YIELD;
// JMP back to the ADD, seeded with r0=0, r1=1, and checks that r0 walks the
// Fibonacci sequence across yields. The loop body performs (r0, r1) :=
// (r1, r0+r1) each pass, so r0 after yield k is F(k) under F(1)=F(2)=1 —
// want is built from that same recurrence rather than a hand-copied table.
func TestFibonacciYields(t *testing.T) {
	c := cpu.New()
	c.LoadAt(0x8000, []uint16{0x0100, 0x0111, 0x1010, 0x0201, 0x0A00, 0x0E40, 0x8002})
	c.WriteWord(cpu.IP, 0x8000)

	want := make([]uint16, 20)
	a, b := uint16(0), uint16(1)
	for i := range want {
		a, b = b, a+b
		want[i] = a
	}

	for i, w := range want {
		c.UntilYield()
		got := c.ReadWord(0)
		if got != w {
			t.Fatalf("yield %d: got %d, want %d", i, got, w)
		}
	}
}

// TestIncrementLoop loads ADD #1 &r0; JMP #0x8000 (self-loop) and runs it
// until r0 exceeds 1000. Each pass through the loop costs two ticks (the
// ADD and the JMP back), and the final ADD that pushes r0 to 1001 is not
// followed by another JMP before the loop condition is rechecked, so
// reaching r0 == 1001 costs 1001 ADDs + 1000 JMPs = 2001 ticks.
func TestIncrementLoop(t *testing.T) {
	c := cpu.New()
	c.LoadAt(0x8000, []uint16{0x1110, 0x0E40, 0x8000})
	c.WriteWord(cpu.IP, 0x8000)

	ticks := 0
	for c.ReadWord(0) <= 1000 {
		c.Tick()
		ticks++
	}
	if c.ReadWord(0) != 1001 {
		t.Fatalf("mem[0] = %d, want 1001", c.ReadWord(0))
	}
	if ticks != 2001 {
		t.Fatalf("ticks = %d, want 2001", ticks)
	}
}

func TestWrappingArithmeticInvariants(t *testing.T) {
	c := cpu.New()
	// ADD #b &r0; SUB #b &r0 -> r0 unchanged.
	c.WriteWord(0, 40)
	c.LoadAt(0x8000, []uint16{
		0x1100 | 2<<4 | 0, // ADD #2 &r0
		0x2100 | 2<<4 | 0, // SUB #2 &r0
		cpu.YieldInstruction,
	})
	c.WriteWord(cpu.IP, 0x8000)
	c.UntilYield()
	if c.ReadWord(0) != 40 {
		t.Fatalf("ADD/SUB roundtrip: got %d, want 40", c.ReadWord(0))
	}

	// MUL #0 &r1 -> 0.
	c.WriteWord(1, 77)
	c.LoadAt(0x8100, []uint16{0x3100 | 0<<4 | 1, cpu.YieldInstruction})
	c.WriteWord(cpu.IP, 0x8100)
	c.UntilYield()
	if c.ReadWord(1) != 0 {
		t.Fatalf("MUL by 0: got %d, want 0", c.ReadWord(1))
	}

	// XOR r2 with itself -> 0.
	c.WriteWord(2, 0x1234)
	c.LoadAt(0x8200, []uint16{0xD000 | 0<<8 | 2<<4 | 2, cpu.YieldInstruction})
	c.WriteWord(cpu.IP, 0x8200)
	c.UntilYield()
	if c.ReadWord(2) != 0 {
		t.Fatalf("XOR self: got %04X, want 0", c.ReadWord(2))
	}
}

func TestPointerRoundTrip(t *testing.T) {
	c := cpu.New()
	// r0 holds a pointer to 0x9000; 0x9000 holds 0x4242.
	c.WriteWord(0, 0x9000)
	c.WriteWord(0x9000, 0x4242)
	// PTRREAD &r0 &r1 ; YIELD
	c.LoadAt(0x8000, []uint16{0xA100 | 0<<4 | 1, cpu.YieldInstruction})
	c.WriteWord(cpu.IP, 0x8000)
	c.UntilYield()
	if c.ReadWord(1) != 0x4242 {
		t.Fatalf("ptrread: got %04X, want 4242", c.ReadWord(1))
	}

	// PTRWRITE #5 &r0 -> mem[mem[r0]] = 5
	c.LoadAt(0x8100, []uint16{0xA000 | 3<<8 | 5<<4 | 0, cpu.YieldInstruction})
	c.WriteWord(cpu.IP, 0x8100)
	c.UntilYield()
	if c.ReadWord(0x9000) != 5 {
		t.Fatalf("ptrwrite: got %04X, want 5", c.ReadWord(0x9000))
	}
}

// TestShiftByFullWordCountIsLogical checks that a shift count >= 16 --
// legal via the wide-literal encoding, since nothing restricts the SHL/SHR
// operand to a nibble -- shifts every bit out, per a true logical shift,
// rather than wrapping modulo 16.
func TestShiftByFullWordCountIsLogical(t *testing.T) {
	c := cpu.New()
	c.WriteWord(0, 1)
	// SHL #20 &r0 (dst = dst << 20): mode=1 (literal src), src wide (20 >
	// 0xF), dst short (r0). Encodes as the op|0x0D00|mode<<4|dst, src form.
	c.LoadAt(0x8000, []uint16{ir.Shl.FirstNibble() | 0x0D00 | 1<<4 | 0, 20, cpu.YieldInstruction})
	c.WriteWord(cpu.IP, 0x8000)
	c.UntilYield()
	if c.ReadWord(0) != 0 {
		t.Fatalf("1 << 20 on a 16-bit word: got %04X, want 0", c.ReadWord(0))
	}
}
