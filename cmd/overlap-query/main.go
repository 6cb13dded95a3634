// Command overlap-query computes the maximum number of concurrently
// overlapping intervals per group from CSV or Parquet input.
package main

import (
	"fmt"
	"os"

	"github.com/eunmann/overlap-db/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
