// Package layout linearizes a function's basic blocks for display.
// It produces an address order, where split loop bodies are reassembled with
// pseudo copies, and a loop order, where blocks are grouped by loop nesting.
package layout

import (
	"fmt"
	"slices"
	"strings"
)

// Address is a virtual address in the analyzed binary.
type Address uint64

func (a Address) String() string { return fmt.Sprintf("0x%x", uint64(a)) }

// Variant tags an ordering entry as a real block or a synthesized copy.
type Variant int

const (
	Normal Variant = iota
	PseudoLoop
)

func (v Variant) String() string {
	switch v {
	case Normal:
		return "normal"
	case PseudoLoop:
		return "pseudoloop"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "normal", "":
		return Normal, nil
	case "pseudoloop":
		return PseudoLoop, nil
	}
	return Normal, fmt.Errorf("unknown block type %q", s)
}

// Flag is an instruction category reported by the analyzer.
type Flag uint8

const (
	FlagVector Flag = iota
	FlagMemRead
	FlagMemWrite
	FlagCall
	FlagSyscall
	FlagFP
	numFlags
)

var flagNames = [numFlags]string{
	FlagVector:   "vector",
	FlagMemRead:  "memread",
	FlagMemWrite: "memwrite",
	FlagCall:     "call",
	FlagSyscall:  "syscall",
	FlagFP:       "fp",
}

func (f Flag) String() string {
	if f < numFlags {
		return flagNames[f]
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// ParseFlag maps a wire name to its Flag.
func ParseFlag(s string) (Flag, bool) {
	for i, name := range flagNames {
		if name == s {
			return Flag(i), true
		}
	}
	return 0, false
}

// Flags is a set of Flag values.
type Flags uint8

func (fs Flags) Has(f Flag) bool { return fs&(1<<f) != 0 }

func (fs Flags) Set(f Flag) Flags { return fs | 1<<f }

// Names lists the set flags in declaration order.
func (fs Flags) Names() []string {
	var out []string
	for f := Flag(0); f < numFlags; f++ {
		if fs.Has(f) {
			out = append(out, f.String())
		}
	}
	return out
}

// Correspondence ties an instruction to a source line.
type Correspondence struct {
	File string
	Line int
}

// VariableKind tells locals from parameters.
type VariableKind int

const (
	VarLocal VariableKind = iota
	VarParam
)

func (k VariableKind) String() string {
	switch k {
	case VarLocal:
		return "local"
	case VarParam:
		return "param"
	}
	return fmt.Sprintf("VariableKind(%d)", int(k))
}

// VariableLocation places a variable at Location, an operand in the syntax
// of the disassembly such as "-0x14(%rbp)", while the pc is in [Start, End).
// A zero range means the whole function.
type VariableLocation struct {
	Start, End Address
	Location   string
}

func (l VariableLocation) covers(addr Address) bool {
	if l.Start == 0 && l.End == 0 {
		return true
	}
	return l.Start <= addr && addr < l.End
}

// Variable is a source-level local or parameter visible at an instruction.
type Variable struct {
	Name      string
	File      string
	Line      int
	Kind      VariableKind
	Locations []VariableLocation
}

// Instruction is one decoded instruction inside a block.
type Instruction struct {
	Address        Address
	Text           string
	Correspondence []Correspondence
	Flags          Flags
	Variables      []Variable
}

// VariableRef is a variable named by an operand of an instruction.
type VariableRef struct {
	Name    string
	Operand string
}

// Operands splits the operand list of the instruction text at commas that
// are not inside parentheses. "mov -0x14(%rbp,%rax,4),%eax" yields
// "-0x14(%rbp,%rax,4)" and "%eax".
func (in *Instruction) Operands() []string {
	text := strings.TrimSpace(in.Text)
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return nil
	}
	text = strings.TrimSpace(text[i:])

	var out []string
	depth, start := 0, 0
	for j, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(text[start:j]))
				start = j + 1
			}
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Refs returns the variables whose location, live at the instruction's
// address, equals one of its operands. Refs follow operand order.
func (in *Instruction) Refs() []VariableRef {
	if len(in.Variables) == 0 {
		return nil
	}
	var refs []VariableRef
	for _, op := range in.Operands() {
		for _, v := range in.Variables {
			if slices.ContainsFunc(v.Locations, func(l VariableLocation) bool {
				return l.Location == op && l.covers(in.Address)
			}) {
				refs = append(refs, VariableRef{Name: v.Name, Operand: op})
				break
			}
		}
	}
	return refs
}

// Hidable is a collapsible instruction range, e.g. a function prologue.
type Hidable struct {
	Name       string
	Start, End Address
}

// LoopOccupancy records a block's visit to one enclosing loop. Index is the
// 1-based position among the loop's direct member visits in address order and
// Total the number of such visits in the function.
type LoopOccupancy struct {
	Name  string
	Index int
	Total int
}

// Block is a basic block as emitted in an ordering.
type Block struct {
	Name             string
	Function         string
	Start, End       Address
	InstructionCount int
	Instructions     []Instruction
	Successors       []string
	Backedges        []string
	Hidables         []Hidable
	Flags            Flags

	// Loops is the loop stack, outermost first.
	Loops        []LoopOccupancy
	Variant      Variant
	IsLoopHeader bool
}

// Depth is the loop nesting depth of the block.
func (b *Block) Depth() int { return len(b.Loops) }

// Innermost returns the innermost loop occupancy, if any.
func (b *Block) Innermost() (LoopOccupancy, bool) {
	if len(b.Loops) == 0 {
		return LoopOccupancy{}, false
	}
	return b.Loops[len(b.Loops)-1], true
}

func (b *Block) innermostName() string {
	if occ, ok := b.Innermost(); ok {
		return occ.Name
	}
	return ""
}

// loopNames returns the set of loop names on the block's stack.
func (b *Block) loopNames() map[string]struct{} {
	names := make(map[string]struct{}, len(b.Loops))
	for _, occ := range b.Loops {
		names[occ.Name] = struct{}{}
	}
	return names
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() Block {
	c := *b
	c.Instructions = nil
	for _, inst := range b.Instructions {
		inst.Correspondence = append([]Correspondence(nil), inst.Correspondence...)
		inst.Variables = append([]Variable(nil), inst.Variables...)
		c.Instructions = append(c.Instructions, inst)
	}
	c.Successors = append([]string(nil), b.Successors...)
	c.Backedges = append([]string(nil), b.Backedges...)
	c.Hidables = append([]Hidable(nil), b.Hidables...)
	c.Loops = append([]LoopOccupancy(nil), b.Loops...)
	return c
}

// pseudo returns a PseudoLoop copy of the block.
func (b *Block) pseudo() Block {
	c := b.Clone()
	c.Variant = PseudoLoop
	return c
}

// Ordering is a linear sequence of blocks, real or synthesized.
type Ordering []Block

// Function is one function's analyzer output.
type Function struct {
	Name   string
	Blocks []Block
	Loops  []LoopEntry
}
