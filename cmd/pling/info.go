package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pling-project/pling/internal/dbus"
)

var infoOpts struct {
	json bool
}

// serverReport is the JSON shape of 'pling info --json'.
type serverReport struct {
	Name         string   `json:"name"`
	Vendor       string   `json:"vendor"`
	Version      string   `json:"version"`
	SpecVersion  string   `json:"specVersion"`
	Capabilities []string `json:"capabilities"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the running notification daemon",
	Long: `Query the running notification daemon for its server information and
capabilities. Works against any daemon implementing the
org.freedesktop.Notifications interface, not just plingd.`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoOpts.json, "json", false, "Output as JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := dbus.NewClient()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	info, err := client.ServerInformation()
	if err != nil {
		return fmt.Errorf("failed to query server information: %w", err)
	}

	caps, err := client.Capabilities()
	if err != nil {
		return fmt.Errorf("failed to query capabilities: %w", err)
	}

	if infoOpts.json {
		report := serverReport{
			Name:         info.Name,
			Vendor:       info.Vendor,
			Version:      info.Version,
			SpecVersion:  info.SpecVersion,
			Capabilities: caps,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Printf("Name:         %s\n", info.Name)
	fmt.Printf("Vendor:       %s\n", info.Vendor)
	fmt.Printf("Version:      %s\n", info.Version)
	fmt.Printf("Spec version: %s\n", info.SpecVersion)
	fmt.Printf("Capabilities: %s\n", strings.Join(caps, ", "))
	return nil
}
