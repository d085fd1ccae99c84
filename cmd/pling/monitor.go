package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pling-project/pling/internal/dbus"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch notification lifecycle signals",
	Long: `Watch NotificationClosed and ActionInvoked signals emitted by the
notification daemon and print them as they arrive. Runs until
interrupted.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	client, err := dbus.NewClient()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(os.Stderr, "watching notification signals, Ctrl-C to stop")

	handlers := dbus.SignalHandlers{
		Closed: func(id uint32, reason dbus.CloseReason) {
			fmt.Printf("closed id=%d reason=%d (%s)\n", id, reason, reason)
		},
		Action: func(id uint32, actionKey string) {
			fmt.Printf("action id=%d key=%s\n", id, actionKey)
		},
	}

	return client.Watch(ctx, handlers)
}
