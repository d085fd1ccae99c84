package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pling-project/pling/internal/dbus"
)

var closeCmd = &cobra.Command{
	Use:   "close ID",
	Short: "Close a notification",
	Long: `Ask the daemon to close a notification by id.

Closing an id the daemon does not know is a silent no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid notification id %q", args[0])
	}

	client, err := dbus.NewClient()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := client.CloseNotification(uint32(id)); err != nil {
		return fmt.Errorf("failed to close notification: %w", err)
	}
	return nil
}
