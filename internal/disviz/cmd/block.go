package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"disviz/internal/dump"
	"disviz/internal/layout"
	"disviz/internal/pager"
	"disviz/internal/render"
)

var blockCmd = &cobra.Command{
	Use:   "block [dump] [order] [name]",
	Short: "Print one entry of an ordering",
	Long: `Print the first entry of memory_order or loop_order with the given block
name, or with --start the first entry starting at that address. Instructions
are listed with hidable ranges folded unless --show-hidden is given.`,
	Example: `
# Block by name
disviz block program.json loop_order B12

# Block by start address, as JSON
disviz block program.json memory_order --start 0x401a2c --json
  `,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		if start == "" && len(args) < 3 {
			return fmt.Errorf("block name or --start required")
		}

		s, err := openSession(cmd, args[0], false)
		if err != nil {
			return err
		}
		o, _, _ := s.order(args[1])
		p := pager.New(o, s.cfg.BlocksPerPage)

		var b layout.Block
		if start != "" {
			a, err := strconv.ParseUint(start, 0, 64)
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", start, err)
			}
			b, err = p.BlockByStart(layout.Address(a))
			if err != nil {
				return err
			}
		} else {
			b, err = p.BlockByName(args[2])
			if err != nil {
				return err
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return dump.EncodeBlock(cmd.OutOrStdout(), &b)
		}
		showHidden, _ := cmd.Flags().GetBool("show-hidden")
		return render.Text(cmd.OutOrStdout(), layout.Ordering{b}, render.TextOptions{
			Instructions: true,
			ShowHidden:   showHidden,
		})
	},
}

func init() {
	blockCmd.Flags().StringP("start", "s", "", "Find the block starting at this address")
	blockCmd.Flags().Bool("json", false, "Print the block as JSON")
	blockCmd.Flags().Bool("show-hidden", false, "Expand hidable ranges such as prologues")
}
