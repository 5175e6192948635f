package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"disviz/internal/render"
)

var minimapCmd = &cobra.Command{
	Use:   "minimap [dump] [order]",
	Short: "Print the minimap of an ordering",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], false)
		if err != nil {
			return err
		}
		o, m, title := s.order(args[1])
		fmt.Fprintln(cmd.OutOrStdout(), render.MinimapTable(title, o, m))
		if dt := render.DiagnosticsTable(s.res.Diagnostics); dt != "" {
			fmt.Fprintln(cmd.OutOrStdout(), dt)
		}
		return nil
	},
}
