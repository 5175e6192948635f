package layout

// LoopOrder groups a function's address order entries by loop nesting.
//
// Entries outside any loop keep their place. The first entry of a top-level
// loop pulls in the whole loop: its entries in sequence order, with every
// entry that belongs to a child loop replaced by that child's group, and the
// header moved to the front of each level. Once a block has a PseudoLoop
// entry, its Normal entry is dropped from the result.
func LoopOrder(entries Ordering, loops []LoopEntry) Ordering {
	idx := newLoopIndex(loops)
	visited := make([]bool, len(entries))
	out := make(Ordering, 0, len(entries))
	for i := range entries {
		if visited[i] {
			continue
		}
		e := &entries[i]
		var top *LoopEntry
		if len(e.Loops) > 0 {
			top = idx.topLevel(loops, e.Name)
		}
		if top == nil {
			visited[i] = true
			out = append(out, e.Clone())
			continue
		}
		for _, j := range collectGroup(entries, top, idx, visited) {
			out = append(out, entries[j].Clone())
		}
	}
	return dedupPseudo(out)
}

// collectGroup returns the positions of l's unvisited entries, children
// expanded in place, and marks them visited.
func collectGroup(entries Ordering, l *LoopEntry, idx *loopIndex, visited []bool) []int {
	var group []int
	for i := range entries {
		if visited[i] || !idx.contains(l, entries[i].Name) {
			continue
		}
		if child := idx.childOf(l, entries[i].Name); child != nil {
			group = append(group, collectGroup(entries, child, idx, visited)...)
			continue
		}
		visited[i] = true
		group = append(group, i)
	}
	return headerFirst(entries, group, l.Header)
}

// headerFirst moves the header entry to the front of group. A PseudoLoop
// entry of the header is preferred since the Normal one is deduplicated away.
func headerFirst(entries Ordering, group []int, header string) []int {
	if header == "" {
		return group
	}
	pos := -1
	for k, j := range group {
		if entries[j].Name != header {
			continue
		}
		if pos < 0 {
			pos = k
		}
		if entries[j].Variant == PseudoLoop {
			pos = k
			break
		}
	}
	if pos <= 0 {
		return group
	}
	h := group[pos]
	copy(group[1:pos+1], group[:pos])
	group[0] = h
	return group
}

// dedupPseudo drops Normal entries of blocks that appear as PseudoLoop.
func dedupPseudo(o Ordering) Ordering {
	pseudo := make(map[string]bool)
	for i := range o {
		if o[i].Variant == PseudoLoop {
			pseudo[o[i].Name] = true
		}
	}
	if len(pseudo) == 0 {
		return o
	}
	out := o[:0]
	for _, b := range o {
		if b.Variant == Normal && pseudo[b.Name] {
			continue
		}
		out = append(out, b)
	}
	return out
}
