// Package disassembler renders a word stream back into the assembler's own
// text form. It mirrors the cpu package's nibble dispatch (decode.go) and
// leans on the ir package's existing Instruction.String() methods rather
// than inventing a second text format.
package disassembler

import "fmt"

// Line is one decoded instruction: its load address and its text form.
type Line struct {
	Addr uint16
	Text string
}

// Disassemble decodes words, loaded starting at base, into one Line per
// instruction. When too few words remain for an instruction's extension
// form, its first word is reported as a raw-word line and decoding
// resumes at the next word, rather than panicking, since a truncated
// image is a legitimate (if useless) input.
func Disassemble(words []uint16, base uint16) []Line {
	var lines []Line
	i := 0
	for i < len(words) {
		addr := base + uint16(i)
		size, ok := tryDecode(words, i)
		if !ok {
			lines = append(lines, Line{Addr: addr, Text: fmt.Sprintf("0x%x;", words[i])})
			i++
			continue
		}
		instr, _ := decodeOne(words, i)
		lines = append(lines, Line{Addr: addr, Text: fmt.Sprint(instr)})
		i += size
	}
	return lines
}

// tryDecode reports whether words has enough room left at i for the
// instruction's full (possibly extended) encoding before decodeOne
// indexes past the end of the slice.
func tryDecode(words []uint16, i int) (size int, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, size = decodeOne(words, i)
	return size, true
}

// String renders a Line the way a disassembly listing reads: the address
// followed by the decoded instruction text.
func (l Line) String() string {
	return fmt.Sprintf("%04X  %s", l.Addr, l.Text)
}
