package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/upb/proof-layer/internal/trace"
)

const localBucket = "local"

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var bucket, key string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Chunk, embed and store a local file",
		Long: `Ingest a local text or PDF file into the configured store.

Without --key the file is stored under a fresh upload key, so it gets its
own trace id just like a browser upload would.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", args[0], err)
			}

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

			if key == "" {
				key = trace.BuildUploadKey(time.Now(), trace.NewID(), filepath.Base(args[0]))
			}
			res, err := deps.Ingest.IngestData(ctx, bucket, key, data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", localBucket, "Bucket name recorded on the document")
	cmd.Flags().StringVar(&key, "key", "", "Object key recorded on the document (default: a new upload key)")
	return cmd
}
