// logstat - time window scanner for chronologically ordered log files
//
// logstat locates the start of a time window in a large log file by binary
// search, then prints the lines of the window or counts its HTTP requests.
package main

import (
	"os"

	"github.com/ccollicutt/logstat/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
