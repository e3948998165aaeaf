package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"

	"mealplanner/internal/config"
	"mealplanner/internal/logsink"

	"github.com/joho/godotenv"
)

func main() {
	var addr string
	var help bool

	flag.StringVar(&addr, "addr", ":8080", "Address to bind")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.BoolVar(&help, "h", false, "Show help message")
	flag.Parse()

	if help {
		showHelp()
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	shutdownLogs, err := logsink.Setup(ctx, logsink.LoadConfig("mealplanner"))
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer func() {
		if err := shutdownLogs(context.Background()); err != nil {
			log.Printf("failed to flush logs: %v", err)
		}
	}()

	if err := runServer(cfg, addr); err != nil {
		log.Printf("server error: %v", err)
	}
}

func showHelp() {
	fmt.Println("mealplanner - meal planning and ingredient import server")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mealplanner [-addr :8080]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -addr           Address to bind (default :8080)")
	fmt.Println("  -help, -h       Show this help message")
	fmt.Println()
	fmt.Println("Configuration is read from the environment (and .env when present):")
	fmt.Println("  OPENAI_API_KEY, GEMINI_API_KEY, PARSER_DEFAULT, PARSER_CACHE, CACHE_DIR,")
	fmt.Println("  AZURE_STORAGE_ACCOUNT_NAME, OTEL_EXPORTER_OTLP_ENDPOINT, LOG_LEVEL")
}
