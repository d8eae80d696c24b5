package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"

	"github.com/upb/proof-layer/worker"
)

func newProcessEventCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process-event <file|->",
		Short: "Replay an S3 notification through the ingest worker",
		Long: `Read an S3 event notification (the body of an SQS message) from a file,
or from stdin with "-", and ingest every object it names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, err := opts.loadDependencies(ctx)
			if err != nil {
				return err
			}
			defer deps.Close(ctx)

			unlock, err := acquireStoreLock(deps.Config, storeLockTimeout)
			if err != nil {
				return err
			}
			defer unlock()

			h := worker.NewHandler(deps.Ingest, deps.Logger)
			resp, err := h.HandleSQS(ctx, events.SQSEvent{
				Records: []events.SQSMessage{{MessageId: "proofctl", Body: string(body)}},
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return data, nil
}
