package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/inventa/internal/backend"
	"github.com/turtacn/inventa/pkg/logger"
)

// inventad is the standalone backend binary the packaged host spawns. It is
// equivalent to `inventa serve` without the CLI surface.
func main() {
	logger.InitLogger(os.Getenv("INVENTA_LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := backend.Run(ctx); err != nil {
		os.Exit(1)
	}
}

// Personal.AI order the ending
