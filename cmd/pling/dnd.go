package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pling-project/pling/internal/store"
)

var dndOpts struct {
	quiet bool
}

// dndCmd represents the dnd command group.
var dndCmd = &cobra.Command{
	Use:   "dnd",
	Short: "Manage do-not-disturb mode",
	Long: `Manage do-not-disturb mode for plingd.

While do-not-disturb is enabled the daemon records incoming
notifications without showing popups or playing sounds. The flag lives
in the shared state file; a running daemon picks up changes
immediately.

Use 'pling dnd status' to check the current state.
Use 'pling dnd on', 'pling dnd off' or 'pling dnd toggle' to change it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing status
		return dndStatusRun(cmd, args)
	},
}

var dndOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable do-not-disturb mode",
	RunE:  dndOnRun,
}

var dndOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable do-not-disturb mode",
	RunE:  dndOffRun,
}

var dndToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle do-not-disturb mode",
	RunE:  dndToggleRun,
}

var dndStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show do-not-disturb status",
	Long: `Show whether do-not-disturb is enabled.

Exits 1 when enabled and 0 when disabled, so scripts and status bars
can branch on the state without parsing output.`,
	RunE: dndStatusRun,
}

func init() {
	dndCmd.AddCommand(dndOnCmd)
	dndCmd.AddCommand(dndOffCmd)
	dndCmd.AddCommand(dndToggleCmd)
	dndCmd.AddCommand(dndStatusCmd)

	for _, cmd := range []*cobra.Command{dndCmd, dndOnCmd, dndOffCmd, dndToggleCmd, dndStatusCmd} {
		cmd.Flags().BoolVarP(&dndOpts.quiet, "quiet", "q", false,
			"Suppress output")
	}

	rootCmd.AddCommand(dndCmd)
}

func dndOnRun(cmd *cobra.Command, args []string) error {
	return setDnD(true)
}

func dndOffRun(cmd *cobra.Command, args []string) error {
	return setDnD(false)
}

func dndToggleRun(cmd *cobra.Command, args []string) error {
	state, err := store.LoadSharedState(globalOpts.stateFile)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	state.ToggleDoNotDisturb("cli")
	if err := store.SaveSharedState(globalOpts.stateFile, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	printDnD(state.DoNotDisturb)
	return nil
}

func dndStatusRun(cmd *cobra.Command, args []string) error {
	state, err := store.LoadSharedState(globalOpts.stateFile)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	printDnD(state.DoNotDisturb)
	if !dndOpts.quiet {
		if last := state.LastTransition(); last != nil {
			fmt.Printf("  Last change: %s", humanize.Time(time.Unix(last.Timestamp, 0)))
			if last.Source != "" {
				fmt.Printf(" (%s)", last.Source)
			}
			fmt.Println()
		}
	}

	// Exit code mirrors the state: 0=off, 1=on
	if state.DoNotDisturb {
		os.Exit(1)
	}
	return nil
}

// setDnD writes the flag to the shared state file. Setting the value it
// already has records no transition and rewrites nothing.
func setDnD(enabled bool) error {
	state, err := store.LoadSharedState(globalOpts.stateFile)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if state.SetDoNotDisturb(enabled, "cli") {
		if err := store.SaveSharedState(globalOpts.stateFile, state); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
	}

	printDnD(state.DoNotDisturb)
	return nil
}

func printDnD(enabled bool) {
	if dndOpts.quiet {
		return
	}
	if enabled {
		fmt.Println("Do Not Disturb: enabled")
	} else {
		fmt.Println("Do Not Disturb: disabled")
	}
}
