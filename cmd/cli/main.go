package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dmautz1/ai-agent-platform-sub002/cmd/cli/commands"
)

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
