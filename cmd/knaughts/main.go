package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/knaughts/internal/app"
	"github.com/dmitrijs2005/knaughts/internal/config"
	"github.com/dmitrijs2005/knaughts/internal/console"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	secret, err := console.ReadSecret(os.Stderr, "Encryption key: ", int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("%v", err)
	}

	a, err := app.NewApp(ctx, cfg, secret, app.IO{In: os.Stdin, Out: os.Stdout, Log: os.Stderr})
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
