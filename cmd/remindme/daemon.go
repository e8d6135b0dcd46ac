package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/4thel00z/remindme/internal"
	"github.com/spf13/cobra"
)

func NewDaemonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:    internal.DaemonCommand,
		Short:  "Run the reminder daemon in the foreground",
		Long:   `Poll the reminder store every interval and show a notification for each due reminder.`,
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE:   makeDaemonRunner(a),
	}

	return cmd
}

func makeDaemonRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		svc, err := a.services(cmd)
		if err != nil {
			return err
		}

		if err := svc.Guard.Acquire(cmd.Context()); err != nil {
			return err
		}
		defer func() {
			if err := svc.Guard.Release(); err != nil {
				svc.Log.WithError(err).Warn("Could not release daemon lock")
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc.Log.WithField("pid", os.Getpid()).Info("Reminder daemon running")

		if err := svc.NewDaemon(cmd.OutOrStdout()).Run(ctx); err != nil {
			return fmt.Errorf("daemon: %w", err)
		}
		return nil
	}
}
