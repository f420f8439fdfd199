// cmd/docketwatch/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/docket-watch/acquire/internal/cli"
)

func main() {
	// Batch runs install their own cancellation; this handler covers the
	// single-lookup path where a second interrupt should always work.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down...")
		<-sigCh
		os.Exit(1)
	}()

	cli.Execute()
}
