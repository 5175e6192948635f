package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"disviz/internal/render"
)

var reportCmd = &cobra.Command{
	Use:   "report [dump]",
	Short: "Summarize a dump as markdown",
	Long: `Summarize functions, loops, pseudo-loop entries, source files and
diagnostics. The markdown is rendered for the terminal unless output is
piped or --raw is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], false)
		if err != nil {
			return err
		}
		md := render.Report(filepath.Base(args[0]), s.res, s.idx)

		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !term.IsTerminal(os.Stdout.Fd()) {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		width, _, err := term.GetSize(os.Stdout.Fd())
		if err != nil {
			width = 80
		}
		out, err := render.RenderMarkdown(md, width-2)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("raw", false, "Print markdown without rendering")
}
