package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"disviz/internal/config"
	dlog "disviz/internal/disviz/log"
	"disviz/internal/dump"
	"disviz/internal/layout"
	"disviz/internal/logging"
	"disviz/internal/source"
	"disviz/internal/symbols"
)

// session is a loaded dump together with its layout.
type session struct {
	cfg  config.Config
	path string
	fns  []layout.Function
	res  *layout.Result
	idx  *source.Index
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("DISVIZ_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if err := dlog.Setup("", cfg.Debug); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger returns the command logger. Interactive sessions only log when
// DISVIZ_LOG_TO_FILE is set, since stderr shares the terminal with the TUI.
func newLogger(interactive, debug bool) *logging.LoggerCloser {
	if interactive {
		return logging.New(io.Discard, logging.OptionsFromEnv(debug))
	}
	return logging.NewLogger(debug)
}

func readDump(path string) ([]layout.Function, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dump: %w", err)
		}
		defer f.Close()
		r = f
	}
	fns, err := dump.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fns, nil
}

func openSession(cmd *cobra.Command, path string, interactive bool) (*session, error) {
	if _, err := ResolveCwd(cmd); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	fns, err := readDump(path)
	if err != nil {
		return nil, err
	}

	lg := newLogger(interactive, cfg.Debug)
	defer lg.Close()

	start := time.Now()
	res, err := layout.Build(cmd.Context(), fns, cfg.LayoutOptions())
	if err != nil {
		return nil, fmt.Errorf("layout interrupted: %w", err)
	}
	lg.Diagnostics(res.Diagnostics)
	lg.Debug("layout built",
		"functions", len(fns),
		"address_entries", len(res.AddressOrder),
		"loop_entries", len(res.LoopOrder),
		"elapsed", time.Since(start))
	slog.Debug("Layout built", "dump", path, "functions", len(fns))

	return &session{
		cfg:  cfg,
		path: path,
		fns:  fns,
		res:  res,
		idx:  source.Build(fns),
	}, nil
}

// Ordering arguments. Anything other than memory_order selects loop order.
const (
	memoryOrder = "memory_order"
	loopOrder   = "loop_order"
)

func (s *session) order(name string) (layout.Ordering, layout.Minimap, string) {
	if name == memoryOrder {
		return s.res.AddressOrder, s.res.AddressMinimap, "Address order"
	}
	return s.res.LoopOrder, s.res.LoopMinimap, "Loop order"
}

func (s *session) function(name string) (layout.Function, bool) {
	for _, fn := range s.fns {
		if fn.Name == name || symbols.Short(fn.Name) == name || symbols.Demangle(fn.Name) == name {
			return fn, true
		}
	}
	return layout.Function{}, false
}

func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}
