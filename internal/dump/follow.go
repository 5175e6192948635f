package dump

import (
	"context"
	"fmt"
	"strings"

	"github.com/nxadm/tail"

	"disviz/internal/layout"
)

// Follow tails a line-delimited dump at path, calling fn for every function
// decoded from a completed line, including lines already present. It runs
// until ctx is done or fn returns an error.
func Follow(ctx context.Context, path string, fn func(layout.Function) error) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", path, err)
	}
	defer t.Cleanup()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return fmt.Errorf("failed to read %s: %w", path, line.Err)
			}
			if strings.TrimSpace(line.Text) == "" {
				continue
			}
			fns, err := DecodeLine([]byte(line.Text))
			if err != nil {
				return fmt.Errorf("%s line %d: %w", path, line.Num, err)
			}
			for _, f := range fns {
				if err := fn(f); err != nil {
					return err
				}
			}
		}
	}
}
