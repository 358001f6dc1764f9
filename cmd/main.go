package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/majorcompass-backend/internal/cli"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
