package dump

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"disviz/internal/layout"
)

var ErrEmptyDump = errors.New("dump contains no functions")

// Decode reads every function from r. The stream may hold a JSON array of
// functions, an object with a "functions" array, or one function object per
// line; forms may be mixed.
func Decode(r io.Reader) ([]layout.Function, error) {
	dec := json.NewDecoder(r)
	var fns []layout.Function
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode dump: %w", err)
		}
		recs, err := records(raw)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			fn, err := recs[i].Function()
			if err != nil {
				return nil, err
			}
			fns = append(fns, fn)
		}
	}
	if len(fns) == 0 {
		return nil, ErrEmptyDump
	}
	return fns, nil
}

// DecodeLine decodes a single JSON value, as found on one line of a
// streamed dump.
func DecodeLine(line []byte) ([]layout.Function, error) {
	recs, err := records(line)
	if err != nil {
		return nil, err
	}
	fns := make([]layout.Function, len(recs))
	for i := range recs {
		if fns[i], err = recs[i].Function(); err != nil {
			return nil, err
		}
	}
	return fns, nil
}

func records(raw []byte) ([]FunctionRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '[' {
		var recs []FunctionRecord
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("failed to decode function list: %w", err)
		}
		return recs, nil
	}

	var wrapped struct {
		Functions *[]FunctionRecord `json:"functions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode function: %w", err)
	}
	if wrapped.Functions != nil {
		return *wrapped.Functions, nil
	}
	var rec FunctionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode function: %w", err)
	}
	return []FunctionRecord{rec}, nil
}

// Function converts the record to the layout model. Unknown flag names are
// ignored. Pseudo-loop entries, present when a layout result is read back,
// are dropped since layout synthesizes them again.
func (r *FunctionRecord) Function() (layout.Function, error) {
	fn := layout.Function{Name: r.Name}
	for i := range r.Blocks {
		b, err := r.Blocks[i].block(r.Name)
		if err != nil {
			return layout.Function{}, fmt.Errorf("function %s: %w", r.Name, err)
		}
		if b.Variant == layout.PseudoLoop {
			continue
		}
		fn.Blocks = append(fn.Blocks, b)
	}
	for i := range r.Loops {
		fn.Loops = append(fn.Loops, r.Loops[i].entry())
	}
	return fn, nil
}

func (r *BlockRecord) block(function string) (layout.Block, error) {
	variant, err := layout.ParseVariant(r.BlockType)
	if err != nil {
		return layout.Block{}, fmt.Errorf("block %s: %w", r.Name, err)
	}
	b := layout.Block{
		Name:       r.Name,
		Function:   function,
		Start:      layout.Address(r.StartAddress),
		End:        layout.Address(r.EndAddress),
		Successors: append([]string(nil), r.NextBlocks...),
		Flags:      parseFlags(r.Flags),
		Variant:    variant,
	}
	for _, in := range r.Instructions {
		inst, err := in.instruction()
		if err != nil {
			return layout.Block{}, fmt.Errorf("block %s: %w", r.Name, err)
		}
		b.Instructions = append(b.Instructions, inst)
	}
	if r.NInstructions != nil {
		b.InstructionCount = *r.NInstructions
	} else {
		b.InstructionCount = len(r.Instructions)
	}
	for _, h := range r.Hidables {
		b.Hidables = append(b.Hidables, layout.Hidable{
			Name:  h.Name,
			Start: layout.Address(h.StartAddress),
			End:   layout.Address(h.EndAddress),
		})
	}
	return b, nil
}

func (r *InstructionRecord) instruction() (layout.Instruction, error) {
	in := layout.Instruction{
		Address: layout.Address(r.Address),
		Text:    r.Instruction,
		Flags:   parseFlags(r.Flags),
	}
	files := make([]string, 0, len(r.Correspondence))
	for f := range r.Correspondence {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		for _, line := range r.Correspondence[f] {
			in.Correspondence = append(in.Correspondence, layout.Correspondence{File: f, Line: line})
		}
	}
	for _, v := range r.Variables {
		lv, err := v.variable()
		if err != nil {
			return layout.Instruction{}, fmt.Errorf("instruction %#x: %w", r.Address, err)
		}
		in.Variables = append(in.Variables, lv)
	}
	return in, nil
}

func (r *VariableRecord) variable() (layout.Variable, error) {
	v := layout.Variable{
		Name: r.Name,
		File: r.SourceFile,
		Line: r.SourceLine,
		Kind: layout.VarLocal,
	}
	if r.VarType == 1 {
		v.Kind = layout.VarParam
	}
	for _, l := range r.Locations {
		start, err := parseHex(l.StartAddress)
		if err != nil {
			return layout.Variable{}, fmt.Errorf("variable %s: %w", r.Name, err)
		}
		end, err := parseHex(l.EndAddress)
		if err != nil {
			return layout.Variable{}, fmt.Errorf("variable %s: %w", r.Name, err)
		}
		v.Locations = append(v.Locations, layout.VariableLocation{Start: start, End: end, Location: l.Location})
	}
	return v, nil
}

// parseHex reads "0x"-prefixed or decimal addresses; "" is zero.
func parseHex(s string) (layout.Address, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return layout.Address(n), nil
}

func (r *LoopRecord) entry() layout.LoopEntry {
	e := layout.LoopEntry{
		Name:    r.Name,
		Header:  r.HeaderBlock,
		Members: append([]string(nil), r.Blocks...),
	}
	for _, be := range r.Backedges {
		e.Backedges = append(e.Backedges, layout.Backedge{Source: be[0], Target: be[1]})
	}
	for i := range r.Loops {
		e.Children = append(e.Children, r.Loops[i].entry())
	}
	return e
}

func parseFlags(names []string) layout.Flags {
	var fs layout.Flags
	for _, n := range names {
		if f, ok := layout.ParseFlag(n); ok {
			fs = fs.Set(f)
		}
	}
	return fs
}
