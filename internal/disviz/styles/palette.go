package styles

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Code view colours.
const (
	Foreground = "#D4D4D4"
	InlineCode = "#EACD53"
	Comment    = "#6A9955"
	Address    = "#858585"
	Function   = "#DCDCAA"
	Selection  = "#264F78"
)

// loopColors cycle by loop depth.
var loopColors = []string{
	charmtone.Malibu.Hex(),
	charmtone.Guac.Hex(),
	charmtone.Zest.Hex(),
	charmtone.Cheeky.Hex(),
	charmtone.Charple.Hex(),
}

var (
	BlockName = lipgloss.NewStyle().Foreground(lipgloss.Color(Function)).Bold(true)
	Range     = lipgloss.NewStyle().Foreground(lipgloss.Color(Address))
	Pseudo    = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex())).Italic(true)
	Header    = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Zest.Hex()))
	BuiltIn   = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Charcoal.Hex()))
	Variable  = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	Folded    = lipgloss.NewStyle().Foreground(lipgloss.Color(Address)).Italic(true)
	MenuBar   = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
)

// Loop returns the style of a loop tag at the given depth, counting from 1.
func Loop(depth int) lipgloss.Style {
	if depth < 1 {
		depth = 1
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(loopColors[(depth-1)%len(loopColors)]))
}
