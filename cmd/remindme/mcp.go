package main

import (
	"github.com/4thel00z/remindme/internal"
	"github.com/spf13/cobra"
)

func NewMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve reminder tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on standard input and output with the
tools add_reminder, parse_reminder and list_reminders.`,
		Args: cobra.NoArgs,
		RunE: makeMCPRunner(a),
	}

	return cmd
}

func makeMCPRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		svc, err := a.services(cmd)
		if err != nil {
			return err
		}

		srv := internal.NewMCPServer(cmd.Root().Version, svc.SetReminder, svc.ListPending)
		return srv.ServeStdio()
	}
}
