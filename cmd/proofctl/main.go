// Command proofctl runs the proof layer locally: chunk and ingest files,
// ask questions, replay S3 events and serve the HTTP API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
