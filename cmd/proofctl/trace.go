package main

import (
	"github.com/spf13/cobra"

	"github.com/upb/proof-layer/utils"
)

func newTraceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <trace-id>",
		Short: "List the documents ingested under a trace id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.ValidateUUID(args[0]); err != nil {
				return err
			}
			ctx := cmd.Context()
			deps, err := opts.loadDependencies(ctx)
			if err != nil {
				return err
			}
			defer deps.Close(ctx)

			docs, err := deps.Ingest.Documents(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), docs)
		},
	}
}
