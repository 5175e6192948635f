package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Enabled reports whether output should carry ANSI colours.
// DISVIZ_NO_COLOR (any value) turns them off.
func Enabled() bool {
	return os.Getenv("DISVIZ_NO_COLOR") == ""
}

// getAssemblyLexer returns a lexer for AT&T syntax disassembly
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"gas", "GAS", "nasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getDisasmStyle() *chroma.Style {
	candidates := []string{"disviz-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Assembly highlights a block of disassembly. On any failure the input is
// returned unchanged together with the error.
func Assembly(code string) (string, error) {
	if !Enabled() {
		return code, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}
	out := buf.String()
	// the lexer ensures a trailing newline; it may be wrapped in escapes
	if !strings.HasSuffix(code, "\n") {
		if i := strings.LastIndex(out, "\n"); i >= 0 {
			out = out[:i] + out[i+1:]
		}
	}
	return out, nil
}

// Instruction renders "address  text" with the address dimmed and the
// instruction highlighted.
func Instruction(addr uint64, text string) string {
	if !Enabled() {
		return fmt.Sprintf("%x  %s", addr, text)
	}
	colored, err := Assembly(text)
	if err != nil {
		colored = text
	}
	// gray (79, 79, 79)
	return fmt.Sprintf("\033[38;2;79;79;79m%x\033[0m  %s", addr, colored)
}
