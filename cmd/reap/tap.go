package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reap-dev/reap/internal/tap"
)

var tapAddPriority int

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Manage third-party recipe taps",
}

var tapAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Register and clone a new tap",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		tapDir := reapApp.cfg.TapDir(name)
		if err := reapApp.taps.Add(name, url, tapDir, tapAddPriority); err != nil {
			return fmt.Errorf("add tap: %w", err)
		}
		if err := reapApp.taps.Save(); err != nil {
			return fmt.Errorf("save tap registry: %w", err)
		}
		fmt.Printf("tap %q added\n", name)
		return nil
	},
}

var tapRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Unregister a tap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := reapApp.taps.Remove(args[0]); err != nil {
			return fmt.Errorf("remove tap: %w", err)
		}
		if err := reapApp.taps.Save(); err != nil {
			return fmt.Errorf("save tap registry: %w", err)
		}
		fmt.Printf("tap %q removed\n", args[0])
		return nil
	},
}

var tapEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Re-enable a disabled tap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTapEnabled(args[0], true)
	},
}

var tapDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a tap without unregistering it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTapEnabled(args[0], false)
	},
}

func setTapEnabled(name string, enabled bool) error {
	if err := reapApp.taps.SetEnabled(name, enabled); err != nil {
		return fmt.Errorf("set tap state: %w", err)
	}
	if err := reapApp.taps.Save(); err != nil {
		return fmt.Errorf("save tap registry: %w", err)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("tap %q %s\n", name, state)
	return nil
}

var tapUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Fetch and fast-forward a single tap's clone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, ok := reapApp.taps.Get(args[0])
		if !ok {
			return fmt.Errorf("tap %q is not registered", args[0])
		}
		results := tap.Sync([]tap.Tap{t}, reapApp.cfg.TapDir)
		if len(results) > 0 && results[0].Err != nil {
			return fmt.Errorf("update tap %q: %w", args[0], results[0].Err)
		}
		fmt.Printf("tap %q updated\n", args[0])
		return nil
	},
}

var tapSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and fast-forward every enabled tap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := tap.Sync(reapApp.taps.List(), reapApp.cfg.TapDir)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("failed to sync %s: %v\n", r.Name, r.Err)
				failed++
				continue
			}
			fmt.Printf("synced %s\n", r.Name)
		}
		if failed > 0 {
			fmt.Printf("%d of %d tap(s) failed to sync.\n", failed, len(results))
		}
		return nil
	},
}

var tapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered taps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		taps := reapApp.taps.List()
		if len(taps) == 0 {
			fmt.Println("No taps registered.")
			return nil
		}
		for _, t := range taps {
			state := "enabled"
			if !t.Enabled {
				state = "disabled"
			}
			fmt.Printf("%-24s priority=%-4d %s  %s\n", t.Name, t.Priority, state, t.URL)
		}
		return nil
	},
}

func init() {
	tapAddCmd.Flags().IntVar(&tapAddPriority, "priority", 30, "resolution priority relative to other taps")

	tapCmd.AddCommand(tapAddCmd)
	tapCmd.AddCommand(tapRemoveCmd)
	tapCmd.AddCommand(tapEnableCmd)
	tapCmd.AddCommand(tapDisableCmd)
	tapCmd.AddCommand(tapUpdateCmd)
	tapCmd.AddCommand(tapSyncCmd)
	tapCmd.AddCommand(tapListCmd)
}
