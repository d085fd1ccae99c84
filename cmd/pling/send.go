package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pling-project/pling/internal/dbus"
	"github.com/pling-project/pling/internal/model"
)

var sendOpts struct {
	appName  string
	icon     string
	urgency  string
	replaces uint32
	actions  []string
}

var sendCmd = &cobra.Command{
	Use:   "send SUMMARY [BODY]",
	Short: "Send a notification",
	Long: `Send a notification over the session bus and print the assigned id.

Examples:
  # Simple notification
  pling send "Build finished"

  # With body, urgency and icon
  pling send "Disk almost full" "less than 5% left on /" --urgency critical --icon drive-harddisk

  # Replace a previous notification
  pling send "Progress 80%" --replaces 42

  # Offer actions (key:label, repeatable)
  pling send "Incoming call" --action accept:Accept --action decline:Decline`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.appName, "app-name", "a", "pling",
		"Application name")
	sendCmd.Flags().StringVarP(&sendOpts.icon, "icon", "i", "",
		"Icon name or path")
	sendCmd.Flags().StringVarP(&sendOpts.urgency, "urgency", "u", "normal",
		"Urgency (low, normal, critical)")
	sendCmd.Flags().Uint32Var(&sendOpts.replaces, "replaces", 0,
		"Id of a notification to replace")
	sendCmd.Flags().StringArrayVar(&sendOpts.actions, "action", nil,
		"Action as key:label (repeatable)")
}

func runSend(cmd *cobra.Command, args []string) error {
	urgency, err := model.ParseUrgency(sendOpts.urgency)
	if err != nil {
		return err
	}

	actions, err := parseActionFlags(sendOpts.actions)
	if err != nil {
		return err
	}

	client, err := dbus.NewClient()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	n := dbus.Notification{
		AppName:    sendOpts.appName,
		ReplacesID: sendOpts.replaces,
		Icon:       sendOpts.icon,
		Summary:    args[0],
		Actions:    actions,
		Timeout:    -1,
	}
	if len(args) > 1 {
		n.Body = args[1]
	}
	n.SetUrgency(urgency)

	id, err := client.Notify(n)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	fmt.Println(id)
	return nil
}

// parseActionFlags converts key:label flags into the flat wire list.
func parseActionFlags(flags []string) ([]string, error) {
	var actions []string
	for _, f := range flags {
		key, label, ok := strings.Cut(f, ":")
		if !ok || key == "" || label == "" {
			return nil, fmt.Errorf("invalid action %q: expected key:label", f)
		}
		actions = append(actions, key, label)
	}
	return actions, nil
}
