// Package pager serves fixed-size pages and point lookups over an ordering.
package pager

import (
	"errors"
	"fmt"

	"disviz/internal/layout"
)

// DefaultBlocksPerPage is the page size used when none is configured.
const DefaultBlocksPerPage = 100

var (
	ErrNotFound       = errors.New("block not found")
	ErrPageOutOfRange = errors.New("page out of range")
)

// Page is one slice of an ordering.
type Page struct {
	Number           int
	Blocks           layout.Ordering
	IsLast           bool
	StartAddress     layout.Address
	EndAddress       layout.Address
	InstructionCount int
}

// Pager pages over a single ordering.
type Pager struct {
	order   layout.Ordering
	perPage int
}

// New returns a pager with perPage blocks per page. A non-positive perPage
// selects DefaultBlocksPerPage.
func New(order layout.Ordering, perPage int) *Pager {
	if perPage <= 0 {
		perPage = DefaultBlocksPerPage
	}
	return &Pager{order: order, perPage: perPage}
}

// Pages returns the number of pages; an empty ordering has none.
func (p *Pager) Pages() int {
	return (len(p.order) + p.perPage - 1) / p.perPage
}

// Page returns page n, counting from zero.
func (p *Pager) Page(n int) (Page, error) {
	if n < 0 || n >= p.Pages() {
		return Page{}, fmt.Errorf("page %d of %d: %w", n, p.Pages(), ErrPageOutOfRange)
	}
	start := n * p.perPage
	end := start + p.perPage
	last := false
	if end >= len(p.order) {
		end = len(p.order)
		last = true
	}
	blocks := p.order[start:end]
	pg := Page{
		Number:       n,
		Blocks:       blocks,
		IsLast:       last,
		StartAddress: blocks[0].Start,
		EndAddress:   blocks[len(blocks)-1].End,
	}
	for i := range blocks {
		if blocks[i].Variant == layout.Normal {
			pg.InstructionCount += blocks[i].InstructionCount
		}
	}
	return pg, nil
}

// PageContaining returns the page holding the first block whose range covers
// addr. Addresses outside every block fall back to the first page.
func (p *Pager) PageContaining(addr layout.Address) (Page, error) {
	for i := range p.order {
		if p.order[i].Start <= addr && addr <= p.order[i].End {
			return p.Page(i / p.perPage)
		}
	}
	return p.Page(0)
}

// BlockByName returns the first entry named name.
func (p *Pager) BlockByName(name string) (layout.Block, error) {
	for i := range p.order {
		if p.order[i].Name == name {
			return p.order[i], nil
		}
	}
	return layout.Block{}, fmt.Errorf("name %q: %w", name, ErrNotFound)
}

// BlockByStart returns the first entry starting at addr.
func (p *Pager) BlockByStart(addr layout.Address) (layout.Block, error) {
	for i := range p.order {
		if p.order[i].Start == addr {
			return p.order[i], nil
		}
	}
	return layout.Block{}, fmt.Errorf("start %v: %w", addr, ErrNotFound)
}

// AddressRange returns the lowest start and highest end address.
func (p *Pager) AddressRange() (lo, hi layout.Address, err error) {
	if len(p.order) == 0 {
		return 0, 0, fmt.Errorf("empty ordering: %w", ErrNotFound)
	}
	lo, hi = p.order[0].Start, p.order[0].End
	for i := range p.order {
		lo = min(lo, p.order[i].Start)
		hi = max(hi, p.order[i].End)
	}
	return lo, hi, nil
}
