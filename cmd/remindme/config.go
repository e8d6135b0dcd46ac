package main

import (
	"fmt"

	"github.com/4thel00z/remindme/internal"
	"github.com/spf13/cobra"
)

func runInitConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = internal.DefaultConfigPath
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := internal.SaveConfig(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", path)
	return nil
}
