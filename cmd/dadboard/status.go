package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/kylerisse/dadboard/pkg/ui"
	"github.com/spf13/cobra"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	var (
		watch  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the readiness board",
		Long:  "Polls every PC once and prints the board. Use --watch to re-poll on the configured interval.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, flags, watch, asJSON)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-poll and redraw on the poll interval")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, flags *rootFlags, watch, asJSON bool) error {
	a, err := loadApp(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a.board.ResolveAddresses(ctx)

	var ticker *time.Ticker
	if watch {
		ticker = time.NewTicker(a.cfg.PollInterval())
		defer ticker.Stop()
	}

	for {
		snap := a.board.Refresh(ctx)

		switch {
		case asJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
		default:
			if watch {
				// Clear screen.
				fmt.Fprint(out, "\033[2J\033[H")
			}
			fmt.Fprint(out, ui.Board(snap))
		}

		if !watch {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
