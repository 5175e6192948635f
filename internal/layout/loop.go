package layout

// Backedge is a control-flow edge from a loop body back to its header.
type Backedge struct {
	Source string
	Target string
}

// LoopEntry is one node of a function's loop forest. Members includes the
// blocks of all descendant loops.
type LoopEntry struct {
	Name      string
	Header    string
	Members   []string
	Backedges []Backedge
	Children  []LoopEntry
}

// loopIndex caches member sets so membership checks are O(1).
type loopIndex struct {
	members map[*LoopEntry]map[string]struct{}
}

func newLoopIndex(loops []LoopEntry) *loopIndex {
	idx := &loopIndex{members: make(map[*LoopEntry]map[string]struct{})}
	var walk func(ls []LoopEntry)
	walk = func(ls []LoopEntry) {
		for i := range ls {
			l := &ls[i]
			set := make(map[string]struct{}, len(l.Members))
			for _, m := range l.Members {
				set[m] = struct{}{}
			}
			idx.members[l] = set
			walk(l.Children)
		}
	}
	walk(loops)
	return idx
}

func (idx *loopIndex) contains(l *LoopEntry, block string) bool {
	_, ok := idx.members[l][block]
	return ok
}

// childOf returns the first direct child of l that contains block.
func (idx *loopIndex) childOf(l *LoopEntry, block string) *LoopEntry {
	for i := range l.Children {
		if idx.contains(&l.Children[i], block) {
			return &l.Children[i]
		}
	}
	return nil
}

// topLevel returns the first loop in forest order containing block. When more
// than one top-level loop claims the block, forest order decides.
func (idx *loopIndex) topLevel(loops []LoopEntry, block string) *LoopEntry {
	for i := range loops {
		if idx.contains(&loops[i], block) {
			return &loops[i]
		}
	}
	return nil
}

// walkLoops calls fn for every loop in the forest, parents before children.
func walkLoops(loops []LoopEntry, fn func(l *LoopEntry)) {
	for i := range loops {
		fn(&loops[i])
		walkLoops(loops[i].Children, fn)
	}
}
