package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reap-dev/reap/internal/buildinfo"
	"github.com/reap-dev/reap/internal/log"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool

	reapApp *app
)

var rootCmd = &cobra.Command{
	Use:   "reap",
	Short: "A meta package manager for Arch-family Linux systems",
	Long: `reap unifies the official binary repositories, the AUR, Flatpak, and
user-defined tap repositories behind a single install/upgrade/search
surface, choosing where each package comes from by priority and
verifying third-party sources before they touch your system.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogger(cmd, args)

		a, err := newApp()
		if err != nil {
			return err
		}
		reapApp = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "show errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show verbose output")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "show debug output")

	rootCmd.Version = buildinfo.Version()

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(upgradeAllCmd)
	rootCmd.AddCommand(flatpakUpgradeCmd)
	rootCmd.AddCommand(orphanCmd)
	rootCmd.AddCommand(tapCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(completionCmd)
}

func initLogger(cmd *cobra.Command, args []string) {
	level := determineLogLevel()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log.SetDefault(log.New(handler))
}

func determineLogLevel() slog.Level {
	switch {
	case debugFlag:
		return slog.LevelDebug
	case verboseFlag:
		return slog.LevelInfo
	case quietFlag:
		return slog.LevelError
	}

	switch {
	case isTruthy(os.Getenv("REAP_DEBUG")):
		return slog.LevelDebug
	case isTruthy(os.Getenv("REAP_VERBOSE")):
		return slog.LevelInfo
	case isTruthy(os.Getenv("REAP_QUIET")):
		return slog.LevelError
	}

	return slog.LevelWarn
}

func isTruthy(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
