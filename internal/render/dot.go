package render

import (
	"github.com/zboralski/lattice"
	latticerender "github.com/zboralski/lattice/render"

	"disviz/internal/layout"
	"disviz/internal/symbols"
)

// CFG converts a function's blocks to a lattice CFG. Block IDs follow address
// order and Start/End are instruction indices into the function. Backedges
// are labelled "back".
func CFG(fn layout.Function) *lattice.FuncCFG {
	blocks := layout.Ordering(fn.Blocks)
	order := layout.AddressOrder(blocks)

	ids := make(map[string]int, len(order))
	for _, b := range order {
		if b.Variant == layout.Normal {
			ids[b.Name] = len(ids)
		}
	}
	back := make(map[[2]string]bool)
	var walk func([]layout.LoopEntry)
	walk = func(loops []layout.LoopEntry) {
		for _, l := range loops {
			for _, e := range l.Backedges {
				back[[2]string{e.Source, e.Target}] = true
			}
			walk(l.Children)
		}
	}
	walk(fn.Loops)

	lcfg := &lattice.FuncCFG{Name: symbols.Demangle(fn.Name)}
	idx := 0
	for _, b := range order {
		if b.Variant != layout.Normal {
			continue
		}
		lb := &lattice.BasicBlock{
			ID:    ids[b.Name],
			Start: idx,
			End:   idx + b.InstructionCount,
			Term:  len(b.Successors) == 0,
		}
		for _, s := range b.Successors {
			id, ok := ids[s]
			if !ok {
				continue
			}
			succ := lattice.Successor{BlockID: id}
			if back[[2]string{b.Name, s}] {
				succ.Cond = "back"
			}
			lb.Succs = append(lb.Succs, succ)
		}
		for i, in := range b.Instructions {
			if in.Flags.Has(layout.FlagCall) {
				lb.Calls = append(lb.Calls, lattice.CallSite{Offset: idx + i, Callee: in.Text})
			}
		}
		idx += b.InstructionCount
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

// DOT renders one function's control flow graph in Graphviz syntax.
func DOT(fn layout.Function) string {
	g := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{CFG(fn)}}
	return latticerender.DOTCFG(g, symbols.Demangle(fn.Name))
}
