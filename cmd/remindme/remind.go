package main

import (
	"errors"
	"fmt"

	"github.com/4thel00z/remindme/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const displayLayout = "2006-01-02 15:04:05"

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func runRemind(cmd *cobra.Command, a *app, text string, dryRun bool) error {
	svc, err := a.services(cmd)
	if err != nil {
		return err
	}

	out, err := svc.SetReminder.Execute(cmd.Context(), internal.SetReminderInput{
		Text:        text,
		FullCommand: cmd.CommandPath() + " " + text,
		DryRun:      dryRun,
	})
	if out == nil {
		return remindError(cmd, err)
	}

	w := cmd.OutOrStdout()
	r := out.Reminder
	until := internal.FormatTimeUntil(r.TriggerAt.Sub(r.CreatedAt))

	if dryRun {
		fmt.Fprintf(w, "Message: '%s'\n", r.Message)
		fmt.Fprintf(w, "Would remind at: %s (in %s)\n", r.TriggerAt.Format(displayLayout), until)
		fmt.Fprintf(w, "Time expression: %s\n", out.TimeExpression)
		return nil
	}

	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("Reminder set: '%s'", r.Message)))
	fmt.Fprintf(w, "Will remind at: %s (in %s)\n", r.TriggerAt.Format(displayLayout), until)
	if out.DaemonStarted {
		fmt.Fprintf(w, "Started reminder daemon (PID %d)\n", out.DaemonPID)
	}

	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("The reminder is saved but will not fire until the daemon runs."))
		return fmt.Errorf("start daemon: %w", err)
	}
	return nil
}

func remindError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, internal.ErrParseFailure):
		fmt.Fprintln(cmd.OutOrStdout(), "Could not understand the time format. Please use natural language expressions like:")
		fmt.Fprintln(cmd.OutOrStdout(), usageExamples)
		return err
	case errors.Is(err, internal.ErrPastTrigger):
		return err
	}
	return fmt.Errorf("set reminder: %w", err)
}

