package main

import (
	"strings"

	"github.com/spf13/cobra"
)

const usageExamples = `  remindme call mom at 5pm
  remindme buy milk on 28 April
  remindme meeting tomorrow at 2pm
  remindme dentist appointment on 15th May 2025 at 10am
  remindme check oven in 30 minutes`

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "remindme [reminder text]",
		Short: "Set desktop reminders in plain English",
		Long: `Set a reminder by describing it in plain English. A background daemon
shows a desktop notification when the time arrives.`,
		Example:           usageExamples,
		Version:           version,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE:              makeRootRunner(a),
	}

	addPersistentFlags(rootCmd)
	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		NewDaemonCmd(a),
		NewMCPCmd(a),
	)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default ~/.remindme/config.yaml)")
}

func addRootFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("log", false, "View recent log entries")
	f.Bool("history", false, "View recent reminder history")
	f.IntP("lines", "n", 10, "Number of log lines to show")
	f.BoolP("follow", "f", false, "Keep printing new log lines")
	f.Bool("pending", false, "List pending reminders")
	f.Bool("json", false, "Output in JSON format")
	f.Bool("status", false, "Show whether the reminder daemon is running")
	f.Bool("stop", false, "Stop the reminder daemon")
	f.Bool("dry-run", false, "Parse the reminder without saving it")
	f.Bool("init-config", false, "Write a default config file")
}

func makeRootRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		switch {
		case flagSet(cmd, "init-config"):
			return runInitConfig(cmd)
		case flagSet(cmd, "log"), flagSet(cmd, "history"):
			return runLog(cmd, a)
		case flagSet(cmd, "pending"):
			return runPending(cmd, a)
		case flagSet(cmd, "status"):
			return runStatus(cmd, a)
		case flagSet(cmd, "stop"):
			return runStop(cmd, a)
		}

		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return cmd.Help()
		}

		dryRun, _ := flags.GetBool("dry-run")
		return runRemind(cmd, a, text, dryRun)
	}
}

func flagSet(cmd *cobra.Command, name string) bool {
	on, _ := cmd.Flags().GetBool(name)
	return on
}
