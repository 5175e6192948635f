package dump

import (
	"encoding/json"
	"fmt"
	"io"

	"disviz/internal/layout"
)

// Result converts a program layout to its wire record.
func Result(res *layout.Result, sourceFiles []string) ResultRecord {
	var rec ResultRecord
	rec.MemoryOrderBlocks = blockRecords(res.AddressOrder)
	rec.LoopOrderBlocks = blockRecords(res.LoopOrder)
	rec.Minimap.MemoryOrder = minimapRecord(res.AddressMinimap)
	rec.Minimap.LoopOrder = minimapRecord(res.LoopMinimap)
	rec.SourceFiles = sourceFiles
	if rec.SourceFiles == nil {
		rec.SourceFiles = []string{}
	}
	rec.Diagnostics = diagnosticRecords(res.Diagnostics)
	return rec
}

// EncodeResult writes the program layout as indented JSON.
func EncodeResult(w io.Writer, res *layout.Result, sourceFiles []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Result(res, sourceFiles)); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// EncodeFunction writes one function layout as a single JSON line.
func EncodeFunction(w io.Writer, fl *layout.FunctionLayout) error {
	rec := FunctionResultRecord{
		Name:              fl.Name,
		MemoryOrderBlocks: blockRecords(fl.AddressOrder),
		LoopOrderBlocks:   blockRecords(fl.LoopOrder),
		Diagnostics:       diagnosticRecords(fl.Diagnostics),
	}
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("failed to encode function %s: %w", fl.Name, err)
	}
	return nil
}

// EncodeBlock writes one ordering entry as indented JSON.
func EncodeBlock(w io.Writer, b *layout.Block) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(blockRecord(b)); err != nil {
		return fmt.Errorf("failed to encode block %s: %w", b.Name, err)
	}
	return nil
}

func blockRecords(o layout.Ordering) []BlockRecord {
	out := make([]BlockRecord, len(o))
	for i := range o {
		out[i] = blockRecord(&o[i])
	}
	return out
}

func blockRecord(b *layout.Block) BlockRecord {
	n := b.InstructionCount
	rec := BlockRecord{
		Name:          b.Name,
		FunctionName:  b.Function,
		StartAddress:  uint64(b.Start),
		EndAddress:    uint64(b.End),
		NInstructions: &n,
		Instructions:  make([]InstructionRecord, 0, len(b.Instructions)),
		NextBlocks:    append([]string{}, b.Successors...),
		Flags:         b.Flags.Names(),
		BlockType:     b.Variant.String(),
		Backedges:     b.Backedges,
		IsLoopHeader:  b.IsLoopHeader,
	}
	for _, in := range b.Instructions {
		ir := InstructionRecord{
			Address:     uint64(in.Address),
			Instruction: in.Text,
			Flags:       in.Flags.Names(),
		}
		for _, c := range in.Correspondence {
			if ir.Correspondence == nil {
				ir.Correspondence = make(map[string][]int)
			}
			ir.Correspondence[c.File] = append(ir.Correspondence[c.File], c.Line)
		}
		for _, v := range in.Variables {
			ir.Variables = append(ir.Variables, variableRecord(v))
		}
		rec.Instructions = append(rec.Instructions, ir)
	}
	for _, h := range b.Hidables {
		rec.Hidables = append(rec.Hidables, HidableRecord{
			Name:         h.Name,
			StartAddress: uint64(h.Start),
			EndAddress:   uint64(h.End),
		})
	}
	for _, occ := range b.Loops {
		rec.Loops = append(rec.Loops, OccupancyRecord{Name: occ.Name, LoopCount: occ.Index, LoopTotal: occ.Total})
	}
	return rec
}

func variableRecord(v layout.Variable) VariableRecord {
	rec := VariableRecord{
		Name:       v.Name,
		SourceFile: v.File,
		SourceLine: v.Line,
		Locations:  make([]VariableLocationRecord, 0, len(v.Locations)),
	}
	if v.Kind == layout.VarParam {
		rec.VarType = 1
	}
	for _, l := range v.Locations {
		rec.Locations = append(rec.Locations, VariableLocationRecord{
			StartAddress: l.Start.String(),
			EndAddress:   l.End.String(),
			Location:     l.Location,
		})
	}
	return rec
}

func minimapRecord(m layout.Minimap) MinimapRecord {
	rec := MinimapRecord{
		BlockHeights:      m.Heights,
		BuiltInBlock:      m.BuiltIn,
		BlockStartAddress: make([]uint64, m.Len()),
		BlockLoopIndents:  m.Indent,
		BlockFlags:        make([][]string, m.Len()),
	}
	for i := 0; i < m.Len(); i++ {
		rec.BlockStartAddress[i] = uint64(m.StartAddress[i])
		rec.BlockFlags[i] = m.Flags[i].Names()
	}
	return rec
}

func diagnosticRecords(diags []layout.Diagnostic) []DiagnosticRecord {
	var out []DiagnosticRecord
	for _, d := range diags {
		out = append(out, DiagnosticRecord{
			Kind:     d.Kind.String(),
			Function: d.Function,
			Block:    d.Block,
			Loop:     d.Loop,
			Detail:   d.Detail,
		})
	}
	return out
}
