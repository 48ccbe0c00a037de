// Command epqref drives the EPQ reference oracle: it batches dump
// requests, validates the framed CSV output against the declared schemas,
// and writes session reports.
package main

import (
	"log"
	"os"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
