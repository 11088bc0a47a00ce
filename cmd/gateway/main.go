package main

import (
	"context"
	"flag"
	"log"

	"github.com/nastyazhadan/order-gateway/internal/app/gateway"
	"github.com/nastyazhadan/order-gateway/shared/config"
)

func main() {
	envPath := flag.String("env", ".env", "path to the dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	gateway.Run(context.Background(), *cfg)
}
