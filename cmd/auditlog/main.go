package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/peerdir/internal/audit"
	"github.com/dmitrijs2005/peerdir/internal/audit/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := audit.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
