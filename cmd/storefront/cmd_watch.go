package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kinderstep-backend/internal/client/gueststore"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the badges whenever another storefront process changes this device's state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		unsubscribe := a.shop.Subscribe(func(gueststore.Event) { printBadges(cmd) })
		defer unsubscribe()

		printBadges(cmd)
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", a.store.Path())
		if err := a.guest.Follow(ctx, a.store); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}
