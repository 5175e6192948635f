package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"disviz/internal/render"
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $DISVIZ_CONFIG)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the layout without TUI")
	rootCmd.Flags().BoolP("instructions", "i", false, "Print instructions below each block (use with --no-tui)")
	rootCmd.Flags().String("order", loopOrder, "Ordering to print: memory_order or loop_order")
	rootCmd.Flags().Bool("show-hidden", false, "Expand hidable ranges such as prologues (use with --instructions)")

	rootCmd.AddCommand(layoutCmd, pageCmd, blockCmd, minimapCmd, sourceCmd, dotCmd, reportCmd, schemaCmd)
}

var rootCmd = &cobra.Command{
	Use:   "disviz [dump]",
	Short: "Terminal disassembly visualizer",
	Long: `Disviz lays out the basic blocks of an analyzed binary in address order and
in loop order, where every loop's body reads as one contiguous run.
It reads the JSON dump produced by the analyzer and opens an interactive view.`,
	Example: `
# Explore a dump interactively
disviz program.json

# Print the loop order with instructions
disviz -n -i program.json

# Read from stdin
analyzer ./a.out | disviz -n -
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if noTUI || args[0] == "-" || !term.IsTerminal(os.Stdout.Fd()) {
			return runNoTUI(cmd, args[0])
		}

		program := tea.NewProgram(
			newModel(func() (*session, error) { return openSession(cmd, args[0], true) }, args[0]),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func runNoTUI(cmd *cobra.Command, path string) error {
	s, err := openSession(cmd, path, false)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("order")
	withInsts, _ := cmd.Flags().GetBool("instructions")
	showHidden, _ := cmd.Flags().GetBool("show-hidden")

	o, _, _ := s.order(name)
	return render.Text(cmd.OutOrStdout(), o, render.TextOptions{
		Instructions: withInsts,
		Color:        term.IsTerminal(os.Stdout.Fd()),
		ShowHidden:   showHidden,
	})
}

func Execute() {
	// Check if --no-tui is present, or if output is being piped
	// to bypass fang's markdown rendering
	noTUI := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" {
			noTUI = true
			break
		}
	}

	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := rootCmd.ExecuteContext(ctx)
		stop()
		if err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
