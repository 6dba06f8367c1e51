/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: go-redis-batch/cmd/main.go
*/
package main

import (
	"fmt"
	"os"

	"github.com/akashmaji946/go-redis-batch/internal/cli"
	"github.com/akashmaji946/go-redis-batch/internal/common"
)

// main is the entry point of the go-redis-batch CLI.
//
// Usage:
//
//	go-redis-batch run ./scripts/session.yaml [--tx] [--async] [--info]
//	go-redis-batch validate ./scripts/session.yaml
//	go-redis-batch info
//
// Exit status is 1 when the command fails, including a transaction the
// server refused to queue or a reply stream that could not be decoded.
// A transaction EXEC aborted by the server is reported in the output and
// still exits 0.
func main() {
	fmt.Fprintln(os.Stderr, common.ASCII_ART)

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
