package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"disviz/internal/dump"
	"disviz/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [dump]",
	Short: "Write the layout of a dump as JSON",
	Long: `Lay out every function of a dump and write both orderings, their minimaps
and the source files as JSON. With --follow the dump is treated as a growing
JSON lines file and one result line is written per function as it arrives.`,
	Example: `
# Full result
disviz layout program.json

# Only the address order blocks
disviz layout --order memory_order program.json

# Follow an analyzer that is still running
disviz layout -f program.jsonl
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		follow, _ := cmd.Flags().GetBool("follow")
		if follow {
			return runFollow(cmd, args[0])
		}

		s, err := openSession(cmd, args[0], false)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		order, _ := cmd.Flags().GetString("order")
		if order == "" {
			return dump.EncodeResult(out, s.res, s.idx.Files)
		}

		rec := dump.Result(s.res, s.idx.Files)
		blocks := rec.LoopOrderBlocks
		if order == memoryOrder {
			blocks = rec.MemoryOrderBlocks
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(blocks); err != nil {
			return fmt.Errorf("failed to encode %s: %w", order, err)
		}
		return nil
	},
}

func runFollow(cmd *cobra.Command, path string) error {
	if _, err := ResolveCwd(cmd); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lg := newLogger(false, cfg.Debug)
	defer lg.Close()

	out := cmd.OutOrStdout()
	n := 0
	err = dump.Follow(cmd.Context(), path, func(fn layout.Function) error {
		fl := layout.LayoutFunction(fn)
		lg.Diagnostics(fl.Diagnostics)
		n++
		return dump.EncodeFunction(out, &fl)
	})
	slog.Debug("Follow stopped", "dump", path, "functions", n)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	layoutCmd.Flags().BoolP("follow", "f", false, "Follow a growing JSON lines dump")
	layoutCmd.Flags().String("order", "", "Only write the blocks of memory_order or loop_order")
}
