package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"disviz/internal/layout"
	"disviz/internal/pager"
	"disviz/internal/render"
)

var pageCmd = &cobra.Command{
	Use:   "page [dump] [order] [n]",
	Short: "Print one page of an ordering",
	Long: `Print page n (counting from 1) of memory_order or loop_order as a table.
With --address the page holding that address is printed instead; addresses
outside every block show the first page.`,
	Example: `
# Second page of the loop order
disviz page program.json loop_order 2

# Page containing an address
disviz page program.json memory_order --address 0x401a2c
  `,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("address")
		if addr == "" && len(args) < 3 {
			return fmt.Errorf("page number or --address required")
		}

		s, err := openSession(cmd, args[0], false)
		if err != nil {
			return err
		}
		o, _, _ := s.order(args[1])
		p := pager.New(o, s.cfg.BlocksPerPage)

		var pg pager.Page
		if addr != "" {
			a, err := strconv.ParseUint(addr, 0, 64)
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", addr, err)
			}
			pg, err = p.PageContaining(layout.Address(a))
			if err != nil {
				return err
			}
		} else {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid page number %q: %w", args[2], err)
			}
			pg, err = p.Page(n - 1)
			if err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), render.PageTable(pg, p.Pages()))
		return nil
	},
}

func init() {
	pageCmd.Flags().StringP("address", "a", "", "Show the page containing this address")
}
