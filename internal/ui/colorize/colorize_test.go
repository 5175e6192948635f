package colorize

import (
	"strings"
	"testing"
)

func TestInstruction_NoColor(t *testing.T) {
	t.Setenv("DISVIZ_NO_COLOR", "1")

	got := Instruction(0x401000, "mov %rsp,%rbp")
	if want := "401000  mov %rsp,%rbp"; got != want {
		t.Errorf("Instruction() = %q, want %q", got, want)
	}
	code := "push %rbp\nret"
	if got, err := Assembly(code); err != nil || got != code {
		t.Errorf("Assembly() = %q, %v; want input unchanged", got, err)
	}
}

func TestInstruction_Color(t *testing.T) {
	t.Setenv("DISVIZ_NO_COLOR", "")

	got := Instruction(0x401000, "mov %rsp,%rbp")
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("Instruction() = %q, expected ANSI escapes", got)
	}
	if !strings.Contains(got, "401000\x1b[0m  ") {
		t.Errorf("Instruction() = %q, missing address", got)
	}
}
