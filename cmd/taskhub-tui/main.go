package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idrissbado/taskhub/internal/apiclient"
	"github.com/idrissbado/taskhub/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "taskhub-tui:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := ui.LoadClientConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := apiclient.New(cfg.ServerURL, cfg.Timeout())
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return ui.RunTUI(ctx, client)
}
