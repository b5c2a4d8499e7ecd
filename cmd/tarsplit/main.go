package main

import (
	"log"
	"os"

	"github.com/anjor/tarsplit"
)

func main() {

	// Parse CLI and validate the split request
	// On error it will print usage and exit on its own
	ts := tarsplit.NewTarsplitFromArgv(os.Args)

	if err := ts.ProcessArchive(nil); err != nil {
		log.Fatalf("%s", err)
	}

	ts.OutputSummary()
}
