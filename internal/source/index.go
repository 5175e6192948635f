// Package source indexes instruction-to-source-line correspondences so a
// viewer can jump from a source line to the addresses compiled from it.
package source

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"disviz/internal/layout"
)

// Index maps source files and lines to instruction addresses.
type Index struct {
	// Files lists every source file seen, sorted.
	Files []string
	lines map[string]map[int]*line
}

type line struct {
	addrs []layout.Address
	flags layout.Flags
}

// Build indexes the correspondences of every instruction in fns. Addresses
// per line are sorted and unique.
func Build(fns []layout.Function) *Index {
	idx := &Index{lines: make(map[string]map[int]*line)}
	for _, fn := range fns {
		for _, b := range fn.Blocks {
			for _, inst := range b.Instructions {
				for _, c := range inst.Correspondence {
					idx.add(c.File, c.Line, &inst)
				}
			}
		}
	}
	for file, byLine := range idx.lines {
		idx.Files = append(idx.Files, file)
		for _, l := range byLine {
			slices.Sort(l.addrs)
			l.addrs = slices.Compact(l.addrs)
		}
	}
	sort.Strings(idx.Files)
	return idx
}

func (idx *Index) add(file string, n int, inst *layout.Instruction) {
	byLine, ok := idx.lines[file]
	if !ok {
		byLine = make(map[int]*line)
		idx.lines[file] = byLine
	}
	l, ok := byLine[n]
	if !ok {
		l = &line{}
		byLine[n] = l
	}
	l.addrs = append(l.addrs, inst.Address)
	l.flags |= inst.Flags
}

// Resolve maps a file name given by a user to an indexed file: an exact
// match, or the only indexed file whose path ends in name.
func (idx *Index) Resolve(name string) (string, bool) {
	if _, ok := idx.lines[name]; ok {
		return name, true
	}
	clean := filepath.ToSlash(filepath.Clean(name))
	found := ""
	for _, f := range idx.Files {
		if strings.HasSuffix(f, "/"+clean) {
			if found != "" {
				return "", false
			}
			found = f
		}
	}
	return found, found != ""
}

// Addresses returns the instruction addresses compiled from file:line.
func (idx *Index) Addresses(file string, line int) []layout.Address {
	if l, ok := idx.lines[file][line]; ok {
		return l.addrs
	}
	return nil
}

// Flags returns the union of the flags of the instructions compiled from
// file:line.
func (idx *Index) Flags(file string, line int) layout.Flags {
	if l, ok := idx.lines[file][line]; ok {
		return l.flags
	}
	return 0
}

// Lines returns the lines of file that have at least one instruction.
func (idx *Index) Lines(file string) []int {
	byLine := idx.lines[file]
	out := make([]int, 0, len(byLine))
	for n := range byLine {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
