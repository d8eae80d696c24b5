package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/upb/proof-layer/services/ask"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the knowledge base, or refuse",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, err := opts.loadDependencies(ctx)
			if err != nil {
				return err
			}
			defer deps.Close(ctx)

			req := ask.Request{Question: strings.Join(args, " ")}
			if cmd.Flags().Changed("top-k") {
				req.TopK = &topK
			}
			out, err := deps.Ask.Ask(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of chunks to retrieve (default from DEFAULT_TOP_K)")
	return cmd
}
