package layout

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Options configures Build.
type Options struct {
	// SystemPrefixes classify source files as built-in for the minimap.
	// Nil means DefaultSystemPrefixes.
	SystemPrefixes []string
	// Workers bounds how many functions are laid out concurrently.
	// Zero means GOMAXPROCS.
	Workers int
}

// FunctionLayout is the result for a single function.
type FunctionLayout struct {
	Name         string
	AddressOrder Ordering
	LoopOrder    Ordering
	Annotation   Annotation
	Diagnostics  []Diagnostic
}

// FirstAddress is the lowest block start, used to order functions.
func (fl *FunctionLayout) FirstAddress() (Address, bool) {
	if len(fl.AddressOrder) == 0 {
		return 0, false
	}
	return fl.AddressOrder[0].Start, true
}

// Result holds both orderings of a program and their minimaps.
type Result struct {
	Functions      []FunctionLayout
	AddressOrder   Ordering
	LoopOrder      Ordering
	AddressMinimap Minimap
	LoopMinimap    Minimap
	Diagnostics    []Diagnostic
}

// LayoutFunction runs annotation and both orderings for one function. The
// input is not modified.
func LayoutFunction(fn Function) FunctionLayout {
	fl := FunctionLayout{Name: fn.Name}
	if len(fn.Blocks) == 0 {
		fl.Diagnostics = append(fl.Diagnostics, Diagnostic{Kind: DiagEmptyFunction, Function: fn.Name})
		return fl
	}

	blocks, diags := prepare(fn)
	fl.Diagnostics = append(fl.Diagnostics, diags...)

	fl.Annotation = Annotate(blocks, fn.Loops)
	walkLoops(fn.Loops, func(l *LoopEntry) {
		if fl.Annotation.Totals[l.Name] == 0 {
			fl.Diagnostics = append(fl.Diagnostics, Diagnostic{
				Kind:     DiagZeroOccurrenceTotal,
				Function: fn.Name,
				Loop:     l.Name,
			})
		}
	})

	fl.AddressOrder = AddressOrder(fl.Annotation.Apply(blocks))
	fl.LoopOrder = LoopOrder(fl.AddressOrder, fn.Loops)
	return fl
}

// prepare copies the function's blocks in address order, drops successors
// that do not resolve, and attaches header, backedge and flag information.
func prepare(fn Function) ([]Block, []Diagnostic) {
	var diags []Diagnostic

	blocks := make([]Block, len(fn.Blocks))
	names := make(map[string]bool, len(fn.Blocks))
	for i := range fn.Blocks {
		blocks[i] = fn.Blocks[i].Clone()
		blocks[i].Function = fn.Name
		blocks[i].Variant = Normal
		blocks[i].Loops = nil
		names[blocks[i].Name] = true
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})

	headers := make(map[string]bool)
	backedges := make(map[string][]string)
	walkLoops(fn.Loops, func(l *LoopEntry) {
		if l.Header != "" {
			headers[l.Header] = true
		}
		for _, m := range l.Members {
			if !names[m] {
				diags = append(diags, Diagnostic{
					Kind:     DiagMalformedLoopTree,
					Function: fn.Name,
					Loop:     l.Name,
					Block:    m,
				})
			}
		}
		for _, e := range l.Backedges {
			backedges[e.Source] = append(backedges[e.Source], e.Target)
		}
	})

	for i := range blocks {
		b := &blocks[i]
		succs := b.Successors[:0]
		for _, s := range b.Successors {
			if !names[s] {
				diags = append(diags, Diagnostic{
					Kind:     DiagUnresolvedSuccessor,
					Function: fn.Name,
					Block:    b.Name,
					Detail:   s,
				})
				continue
			}
			succs = append(succs, s)
		}
		b.Successors = succs
		b.IsLoopHeader = headers[b.Name]
		b.Backedges = append(b.Backedges, backedges[b.Name]...)
		for _, inst := range b.Instructions {
			b.Flags |= inst.Flags
		}
	}
	return blocks, diags
}

// Build lays out every function and concatenates the results. Functions are
// independent and run on up to opts.Workers goroutines; the output does not
// depend on scheduling. Address order sorts functions by their first block
// address, loop order keeps input order. The only error is ctx's.
func Build(ctx context.Context, fns []Function, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	prefixes := opts.SystemPrefixes
	if prefixes == nil {
		prefixes = DefaultSystemPrefixes
	}

	layouts := make([]FunctionLayout, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range fns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			layouts[i] = LayoutFunction(fns[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Assemble(layouts, prefixes), nil
}

// Assemble concatenates per-function layouts into a program result.
func Assemble(layouts []FunctionLayout, prefixes []string) *Result {
	res := &Result{Functions: layouts}

	byAddr := make([]int, 0, len(layouts))
	for i := range layouts {
		res.LoopOrder = append(res.LoopOrder, layouts[i].LoopOrder...)
		res.Diagnostics = append(res.Diagnostics, layouts[i].Diagnostics...)
		if _, ok := layouts[i].FirstAddress(); ok {
			byAddr = append(byAddr, i)
		}
	}
	sort.SliceStable(byAddr, func(a, b int) bool {
		x, _ := layouts[byAddr[a]].FirstAddress()
		y, _ := layouts[byAddr[b]].FirstAddress()
		return x < y
	})
	for _, i := range byAddr {
		res.AddressOrder = append(res.AddressOrder, layouts[i].AddressOrder...)
	}

	res.AddressMinimap = Summarize(res.AddressOrder, prefixes)
	res.LoopMinimap = Summarize(res.LoopOrder, prefixes)
	return res
}
