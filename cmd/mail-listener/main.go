package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jdlax00/jenkins-oil-pricing-db/internal/config"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/listener"
	"github.com/jdlax00/jenkins-oil-pricing-db/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("mail listener starting provider=%s label=%s interval=%ds\n",
		cfg.ListenerProvider, cfg.ListenerLabel, cfg.ListenerIntervalSec)

	must(listener.NewService(db, cfg).Run(ctx))
	fmt.Println("mail listener stopped")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
