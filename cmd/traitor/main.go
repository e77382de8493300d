// Package main runs a traitor scenario session.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	traitorcmd "github.com/louisbranch/traitorops/internal/cmd/traitor"
)

func main() {
	cfg, err := traitorcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[TRAITOR] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := traitorcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("traitor session: %v", err)
	}
}
