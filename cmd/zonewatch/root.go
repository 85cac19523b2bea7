package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zonewatch/zonewatch/internal/config"
)

// execute builds the command tree and runs it.
func execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCmd creates the zonewatch root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "zonewatch",
		Short:         "Watch facility sensor streams from the terminal",
		Long:          "zonewatch subscribes to the facility dashboard's push streams (zone status, per-zone sensors, notifications) and prints every debounced update. With --mock it runs fully offline against a built-in simulator that reproduces the backend's wire contract.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Load()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("base-url", "", "dashboard backend base URL")
	flags.String("noti-url", "", "notification service base URL (defaults to base-url)")
	flags.String("token", "", "bearer token for stream authentication")
	flags.Bool("mock", false, "run against the built-in simulator instead of a backend")
	flags.Int64("seed", 0, "simulator random seed (0 = time-based)")
	flags.Bool("fast", false, "compress simulator intervals for quick demos")

	for _, name := range []string{"base-url", "noti-url", "token", "mock", "seed", "fast"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newWatchCmd(), newVersionCmd())
	return cmd
}

// newVersionCmd reports build information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("zonewatch %s (%s)\n", version, commit)
		},
	}
}
