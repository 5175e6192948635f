package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"disviz/internal/render"
)

var dotCmd = &cobra.Command{
	Use:   "dot [dump] [function]",
	Short: "Print the control flow graph of a function in DOT",
	Long: `Print the control flow graph of one function in Graphviz DOT syntax.
The function may be given mangled or demangled, with or without parameters.`,
	Example: `
disviz dot program.json main | dot -Tsvg > main.svg
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], false)
		if err != nil {
			return err
		}
		fn, ok := s.function(args[1])
		if !ok {
			return fmt.Errorf("function %q not found in %s", args[1], args[0])
		}
		fmt.Fprint(cmd.OutOrStdout(), render.DOT(fn))
		return nil
	},
}
