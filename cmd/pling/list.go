package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pling-project/pling/internal/model"
	"github.com/pling-project/pling/internal/output"
	"github.com/pling-project/pling/internal/store"
)

var listOpts struct {
	format string
	app    string
	limit  int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded notifications",
	Long: `List the notifications recorded by plingd, newest first.

The list is read from the daemon's cache file, so it works whether or
not the daemon is running.

Examples:
  # Plain text list
  pling list

  # Only notifications from one app
  pling list --app firefox

  # Machine-readable output
  pling list --output json | jq '.[].summary'`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.format, "output", "o", "plain",
		"Output format (plain, json, yaml)")
	listCmd.Flags().StringVar(&listOpts.app, "app", "",
		"Filter by application name (case-insensitive)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of notifications to show (0=unlimited)")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormatType(listOpts.format)
	if err != nil {
		return err
	}

	cache := store.NewCache(globalOpts.cacheFile)
	notifications, err := cache.Load()
	if err != nil {
		return err
	}

	notifications = filterNotifications(notifications)

	formatter := output.NewFormatter(format, output.DefaultOptions())
	return formatter.Format(os.Stdout, notifications)
}

// filterNotifications applies --app and --limit. The cache is stored in
// ascending id order; the listing shows newest first.
func filterNotifications(notifications []model.Notification) []model.Notification {
	filtered := make([]model.Notification, 0, len(notifications))
	for i := len(notifications) - 1; i >= 0; i-- {
		n := notifications[i]
		if listOpts.app != "" && !strings.EqualFold(n.AppName, listOpts.app) {
			continue
		}
		filtered = append(filtered, n)
		if listOpts.limit > 0 && len(filtered) >= listOpts.limit {
			break
		}
	}
	return filtered
}
