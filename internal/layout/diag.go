package layout

import "fmt"

// DiagKind classifies a non-fatal input problem. None of them stops
// processing; the affected output is shortened instead.
type DiagKind int

const (
	// DiagMalformedLoopTree: a loop names a block the function does not have.
	DiagMalformedLoopTree DiagKind = iota
	// DiagUnresolvedSuccessor: an edge targets a block outside the function.
	DiagUnresolvedSuccessor
	// DiagEmptyFunction: the function has no blocks.
	DiagEmptyFunction
	// DiagZeroOccurrenceTotal: a loop ended up with no counted visits.
	DiagZeroOccurrenceTotal
)

func (k DiagKind) String() string {
	switch k {
	case DiagMalformedLoopTree:
		return "malformed-loop-tree"
	case DiagUnresolvedSuccessor:
		return "unresolved-successor"
	case DiagEmptyFunction:
		return "empty-function"
	case DiagZeroOccurrenceTotal:
		return "zero-occurrence-total"
	}
	return fmt.Sprintf("DiagKind(%d)", int(k))
}

// Diagnostic describes one degraded input condition.
type Diagnostic struct {
	Kind     DiagKind
	Function string
	Block    string
	Loop     string
	Detail   string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s", d.Kind, d.Function)
	if d.Loop != "" {
		s += " loop " + d.Loop
	}
	if d.Block != "" {
		s += " block " + d.Block
	}
	if d.Detail != "" {
		s += " (" + d.Detail + ")"
	}
	return s
}
