package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/remindme/internal"
	"github.com/spf13/cobra"
)

type pendingJSON struct {
	Message     string `json:"message"`
	TriggerTime string `json:"trigger_time"`
	Until       string `json:"until"`
	FullCommand string `json:"full_command"`
}

func runPending(cmd *cobra.Command, a *app) error {
	svc, err := a.services(cmd)
	if err != nil {
		return err
	}

	out, err := svc.ListPending.Execute(cmd.Context(), internal.ListPendingInput{})
	if err != nil {
		return fmt.Errorf("list reminders: %w", err)
	}

	w := cmd.OutOrStdout()

	if flagSet(cmd, "json") {
		items := make([]pendingJSON, 0, len(out.Reminders))
		for _, r := range out.Reminders {
			items = append(items, pendingJSON{
				Message:     r.Message,
				TriggerTime: r.TriggerAt.Format(displayLayout),
				Until:       r.Until,
				FullCommand: r.OriginText,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(out.Reminders) == 0 {
		fmt.Fprintln(w, "No pending reminders.")
		return nil
	}

	for _, r := range out.Reminders {
		fmt.Fprintf(w, "%s  (in %s)  %s\n", r.TriggerAt.Format(displayLayout), r.Until, r.Message)
	}
	return nil
}
