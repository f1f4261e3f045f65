// Package assembler implements the four-stage text-to-bytecode pipeline:
// lexing (lexer.go), parsing into Nodes (parser.go/node.go), a single
// layout walk, and final emission.
package assembler

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Urethramancer/robinvm/ir"
)

// DefaultBase is the conventional program-image origin; labels and
// offsets are program-relative from here unless the caller overrides it.
const DefaultBase uint16 = 0x8000

// Assembler holds the label table built up across the layout pass.
type Assembler struct {
	labels map[string]uint16
}

// New creates an empty Assembler.
func New() *Assembler {
	return &Assembler{labels: make(map[string]uint16)}
}

// Assemble lexes and parses src, then runs the layout and emission passes,
// returning the assembled program as a flat word slice.
func (asm *Assembler) Assemble(src string, base uint16) ([]uint16, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	nodes, err := Parse(toks)
	if err != nil {
		return nil, err
	}
	asm.layout(nodes, base)
	return asm.emit(nodes)
}

// layout walks nodes once in order, recording each label's address and
// each instruction's size. A single walk suffices, even for labels used
// before they're defined (a forward jump in a while-loop's lowering, for
// instance): an instruction's encoded length depends only on its
// operands' magnitudes, and any Value still naming an unresolved Label
// reports 0xFFFF -- the widest magnitude -- from Number() directly,
// without needing WithLabels. So sizing never has to wait on a label
// that hasn't been seen yet; it always picks the same width WithLabels
// will need once every label is known.
func (asm *Assembler) layout(nodes []Node, base uint16) {
	pc := base
	for i := range nodes {
		n := &nodes[i]
		switch n.Type {
		case NodeLabel:
			asm.labels[n.Label] = pc
		case NodeInstruction:
			n.Size = uint16(len(n.Instr.ToMachineCode()))
			pc += n.Size
		case NodeReserve:
			n.Size = n.Count
			pc += n.Count
		case NodeRawWord:
			n.Size = 1
			pc++
		}
	}
	log.WithField("labels", len(asm.labels)).Debug("assembler: layout complete")
}

// emit re-walks nodes with the now-stable label table and concatenates
// each statement's machine words. A label referenced but never defined
// surfaces here as an ir.UnresolvedLabelError wrapped with errors.Wrap
// (reachable through errors.As) rather than a bare panic escaping the
// package.
func (asm *Assembler) emit(nodes []Node) (words []uint16, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ule, ok := r.(ir.UnresolvedLabelError); ok {
				words, err = nil, errors.Wrap(ule, "assemble")
				return
			}
			panic(r)
		}
	}()
	var out []uint16
	for _, n := range nodes {
		switch n.Type {
		case NodeLabel:
			// contributes no words
		case NodeInstruction:
			resolved := n.Instr.WithLabels(asm.labels)
			words := resolved.ToMachineCode()
			if uint16(len(words)) != n.Size {
				return nil, errors.Errorf("internal error: %v resized from %d to %d words during emission", resolved, n.Size, len(words))
			}
			out = append(out, words...)
		case NodeReserve:
			out = append(out, make([]uint16, n.Count)...)
		case NodeRawWord:
			out = append(out, n.Word)
		}
	}
	return out, nil
}

// Labels returns the resolved label table built by the last Assemble call.
func (asm *Assembler) Labels() map[string]uint16 {
	return asm.labels
}
