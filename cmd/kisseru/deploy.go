package main

import (
	"github.com/spf13/cobra"

	"github.com/kisseru-go/kisseru/runner"
)

func newDeployCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "deploy <archive>",
		Short: "upload a packaged archive and submit it (batch only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Deploy(args[0], url)
		},
	}
	cmd.Flags().StringVarP(&url, "url", "u", "", "submission endpoint to upload the archive to")
	cmd.MarkFlagRequired("url")
	return cmd
}
