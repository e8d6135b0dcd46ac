package main

import (
	"errors"
	"fmt"

	"github.com/4thel00z/remindme/internal"
	"github.com/spf13/cobra"
)

func runStatus(cmd *cobra.Command, a *app) error {
	svc, err := a.services(cmd)
	if err != nil {
		return err
	}

	status := svc.Guard.Status(cmd.Context())
	w := cmd.OutOrStdout()

	if !status.Running {
		fmt.Fprintln(w, "Reminder daemon is not running")
		return nil
	}

	fmt.Fprintf(w, "Reminder daemon is running (PID %d)\n", status.PID)
	if !status.Since.IsZero() {
		fmt.Fprintf(w, "  Started: %s\n", status.Since.Format(displayLayout))
	}
	fmt.Fprintf(w, "  Lock: %s\n", status.LockPath)
	return nil
}

func runStop(cmd *cobra.Command, a *app) error {
	svc, err := a.services(cmd)
	if err != nil {
		return err
	}

	pid, err := svc.Guard.Stop(cmd.Context())
	if errors.Is(err, internal.ErrDaemonNotRunning) {
		fmt.Fprintln(cmd.OutOrStdout(), "Reminder daemon is not running")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopped reminder daemon (PID %d)\n", pid)
	return nil
}
