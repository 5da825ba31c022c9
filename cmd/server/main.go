package main

import (
	"context"
	"log"

	"github.com/terangapay/terangapay/internal/server"
	"github.com/terangapay/terangapay/internal/server/config"
	"github.com/terangapay/terangapay/internal/server/directory"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg, nil, directory.NewStub())
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
