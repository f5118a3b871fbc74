package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pulkyeet/sandwich-scanner/internal/app"
	"github.com/pulkyeet/sandwich-scanner/internal/config"
	"github.com/pulkyeet/sandwich-scanner/internal/console"
	"github.com/pulkyeet/sandwich-scanner/internal/logging"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("🥪 Multi-chain sandwich attack checker")
	prompt := console.New(os.Stdin, os.Stdout)
	err = app.RunInteractive(ctx, prompt, cfg, app.OpenQuerier)
	prompt.Close()
	if err != nil {
		log.Error("Interactive check aborted", "err", err)
	}
}
