package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/4thel00z/remindme/internal"
	"github.com/spf13/cobra"
)

func runLog(cmd *cobra.Command, a *app) error {
	svc, err := a.services(cmd)
	if err != nil {
		return err
	}

	history := flagSet(cmd, "history")
	lines, _ := cmd.Flags().GetInt("lines")
	follow := flagSet(cmd, "follow")

	path, kind := svc.Config.LogPath(), "reminder log"
	if history {
		path, kind = svc.Config.HistoryPath(), "reminder history"
	}

	out, err := svc.ViewLog.Execute(cmd.Context(), internal.ViewLogInput{Path: path, Lines: lines})
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	w := cmd.OutOrStdout()
	switch {
	case !out.Exists && !follow:
		fmt.Fprintf(w, "No log file found at %s\n", out.Path)
		return nil
	case out.Exists && len(out.Lines) == 0 && !follow:
		fmt.Fprintln(w, "Log file exists but is empty.")
		return nil
	}

	if len(out.Lines) > 0 {
		fmt.Fprintf(w, "Recent %s entries (from %s):\n", kind, out.Path)
		fmt.Fprintln(w, "---------------------------------------------------")
		for _, line := range out.Lines {
			fmt.Fprintln(w, line)
		}
	}

	if !follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return internal.FollowFile(ctx, out.Path, out.Offset, func(line string) {
		fmt.Fprintln(w, line)
	})
}
