package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reap-dev/reap/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage reap's global configuration",
	Long: `Config manages config.toml: backend order, the ignored-package set, and
default install parallelism.

Available keys:
  backend_order        comma-separated backend order (e.g. pacman,aur,flatpak)
  ignored              comma-separated package names to skip during upgrades
  default_parallelism  default max concurrent installs/upgrades`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := reapApp.globalConfig
		fmt.Printf("backend_order       = %s\n", strings.Join(cfg.BackendOrder, ","))
		fmt.Printf("ignored             = %s\n", strings.Join(cfg.Ignored, ","))
		fmt.Printf("default_parallelism = %d\n", cfg.DefaultParallelism)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a single configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := reapApp.globalConfig
		switch args[0] {
		case "backend_order":
			fmt.Println(strings.Join(cfg.BackendOrder, ","))
		case "ignored":
			fmt.Println(strings.Join(cfg.Ignored, ","))
		case "default_parallelism":
			fmt.Println(cfg.DefaultParallelism)
		default:
			return fmt.Errorf("unknown config key %q", args[0])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and persist it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := reapApp.globalConfig
		key, value := args[0], args[1]
		switch key {
		case "backend_order":
			cfg.BackendOrder = splitNonEmpty(value)
		case "ignored":
			cfg.Ignored = splitNonEmpty(value)
		case "default_parallelism":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("default_parallelism must be an integer: %w", err)
			}
			cfg.DefaultParallelism = n
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := config.SaveGlobalConfig(reapApp.cfg.ConfigFile, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Printf("%s = %s\n", key, value)
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to its defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		*reapApp.globalConfig = *config.DefaultGlobalConfig()
		if err := config.SaveGlobalConfig(reapApp.cfg.ConfigFile, reapApp.globalConfig); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("configuration reset to defaults")
		return nil
	},
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}
