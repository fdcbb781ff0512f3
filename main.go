package main

import (
	"storefront/internal/cli"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("storefront: %v", err)
	}
}
