package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/yvan674/dgx-tools/internal/errors"
	"github.com/yvan674/dgx-tools/internal/ui"
)

// runSnapshot prints one collected snapshot, or keeps reprinting it every
// interval when interval > 0. In watch mode an interrupt exits cleanly,
// the first collection failure is fatal, and later failures leave the
// previous frame on screen with a notice.
func runSnapshot(collect func(context.Context) (string, error), interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	first := true
	for {
		out, err := collect(ctx)
		switch {
		case err != nil && (first || !errors.IsRetryable(err)):
			return err
		case err != nil:
			fmt.Println(ui.ErrStyle.Render(ui.SymbolFail + " " + firstLine(err)))
		default:
			if !first {
				clearScreen()
			}
			fmt.Print(out)
		}
		first = false

		if interval == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// clearScreen resets the cursor and wipes the frame. Skipped when stdout
// isn't a terminal so piped watch output stays append-only.
func clearScreen() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Print("\033[H\033[2J")
}

func noMachinesError() error {
	return errors.New(
		errors.ErrConfig,
		"No machines configured",
		"Add machines to your config with `dgx init` before using --all.",
	)
}
