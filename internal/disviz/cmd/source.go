package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"disviz/internal/render"
)

var sourceCmd = &cobra.Command{
	Use:   "source [dump] [file]",
	Short: "Print a source file with the addresses compiled from each line",
	Long: `Print every line of a source file next to the instruction addresses the
dump attributes to it. The file may be named by any unique suffix of its
indexed path. When it cannot be read only the indexed lines are listed.`,
	Example: `
disviz source program.json loop.cpp
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], false)
		if err != nil {
			return err
		}
		file, ok := s.idx.Resolve(args[1])
		if !ok {
			return fmt.Errorf("source file %q not found in %s", args[1], args[0])
		}

		var lines []string
		data, err := os.ReadFile(file)
		if err != nil {
			slog.Debug("Source file unreadable, listing indexed lines", "file", file, "error", err)
		} else {
			sc := bufio.NewScanner(bytes.NewReader(data))
			sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for sc.Scan() {
				lines = append(lines, sc.Text())
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			if lines == nil {
				lines = []string{}
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.SourceTable(file, lines, s.idx))
		return nil
	},
}
