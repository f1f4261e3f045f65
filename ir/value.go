// Package ir implements the variable-length nibble encoder: the IR
// instruction set, its operand types, and the to-machine-code formulas the
// cpu package's decoder mirrors in reverse.
package ir

import "fmt"

// UnresolvedLabelError reports a Value.WithLabels call for a label the
// caller's map doesn't contain. The assembler's label pass guarantees this
// never happens on a fully-resolved program; seeing it means a label was
// referenced but never defined.
type UnresolvedLabelError struct {
	Label string
}

func (e UnresolvedLabelError) Error() string {
	return fmt.Sprintf("unresolved label %q", e.Label)
}

// Value is either a concrete word (Given) or a forward reference to a
// label resolved during assembly (Label). An unresolved Label reports its
// numeric value as 0xFFFF, which always selects the widest encoding form
// during the assembler's sizing pass -- see Number and WithLabels.
type Value struct {
	n       uint16
	label   string
	isLabel bool
}

// Given constructs a Value already holding a concrete word.
func Given(n uint16) Value { return Value{n: n} }

// Label constructs a Value that names a label to be resolved later.
func Label(name string) Value { return Value{label: name, isLabel: true} }

// Number returns the value's numeric form: the concrete word for Given, or
// 0xFFFF for an unresolved Label (forcing the widest encoding).
func (v Value) Number() uint16 {
	if v.isLabel {
		return 0xFFFF
	}
	return v.n
}

// IsLabel reports whether v still names an unresolved label.
func (v Value) IsLabel() bool { return v.isLabel }

// LabelName returns the label name, or "" if v is already Given.
func (v Value) LabelName() string { return v.label }

// WithLabels substitutes a resolved address for a Label, leaving a Given
// value untouched. It panics with UnresolvedLabelError if the label isn't
// in the map; by the time this is called every label in the program must
// have been recorded by the assembler's layout pass.
func (v Value) WithLabels(labels map[string]uint16) Value {
	if !v.isLabel {
		return v
	}
	n, ok := labels[v.label]
	if !ok {
		panic(UnresolvedLabelError{Label: v.label})
	}
	return Given(n)
}

func (v Value) String() string {
	if v.isLabel {
		return v.label
	}
	return fmt.Sprintf("%04X", v.n)
}

// Item is an operand that is either a memory reference (Address) or an
// immediate (Literal) wrapping a Value.
type Item struct {
	Value   Value
	literal bool
}

// Address wraps v as an address operand: the instruction reads or writes
// mem[v].
func Address(v Value) Item { return Item{Value: v} }

// Literal wraps v as an immediate operand: the instruction uses v itself.
func Literal(v Value) Item { return Item{Value: v, literal: true} }

// IsLiteral reports whether the item is a Literal (as opposed to Address).
func (it Item) IsLiteral() bool { return it.literal }

// Number returns the underlying Value's numeric form.
func (it Item) Number() uint16 { return it.Value.Number() }

// WithLabels resolves the wrapped Value, preserving the Address/Literal kind.
func (it Item) WithLabels(labels map[string]uint16) Item {
	return Item{Value: it.Value.WithLabels(labels), literal: it.literal}
}

func (it Item) String() string {
	if it.literal {
		return "#" + it.Value.String()
	}
	return "&" + it.Value.String()
}
