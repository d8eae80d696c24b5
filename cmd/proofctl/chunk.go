package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/upb/proof-layer/internal/chunker"
	"github.com/upb/proof-layer/internal/extract"
)

func newChunkCmd() *cobra.Command {
	var size, overlap int

	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Print the chunks a file would be split into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := chunker.New(size, overlap)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", args[0], err)
			}
			text, err := extract.Text(args[0], data)
			if err != nil {
				return err
			}
			chunks := c.Split(text)
			if chunks == nil {
				chunks = []chunker.Segment{}
			}
			return printJSON(cmd.OutOrStdout(), chunks)
		},
	}
	cmd.Flags().IntVar(&size, "size", chunker.DefaultChunkSize, "Chunk size in characters")
	cmd.Flags().IntVar(&overlap, "overlap", chunker.DefaultOverlap, "Overlap between consecutive chunks in characters")
	return cmd
}
