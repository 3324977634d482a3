// Command server runs the user management HTTP API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sundayezeilo/usermgmt/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The database may still be starting; New retries until DB_CONNECT_TIMEOUT.
	application, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	return application.Start(ctx)
}
