package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io/fs"
	"log"
	"log/slog"
	"os"

	"mealplanner/internal/config"
	"mealplanner/internal/importer"
	"mealplanner/internal/paritycheck"

	"github.com/joho/godotenv"
)

func main() {
	var parser string
	var input string
	var asJSON bool
	flag.StringVar(&parser, "parser", "", "Prompt-driven parser to compare against: openai or gemini")
	flag.StringVar(&parser, "p", "", "Parser (short form)")
	flag.StringVar(&input, "input", "", "Compare on this text instead of the builtin cases")
	flag.StringVar(&input, "i", "", "Input text (short form)")
	flag.BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %s", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %s", err)
	}
	svc, err := importer.NewFromConfig(cfg, nil)
	if err != nil {
		log.Fatalf("failed to create import service: %s", err)
	}
	strategy, err := importer.ParseStrategy(parser, svc.Default())
	if err != nil {
		log.Fatalf("%s", err)
	}
	prompt, err := svc.Parser(strategy)
	if err != nil {
		log.Fatalf("%s", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := paritycheck.New(prompt, string(strategy), paritycheck.SlogSink{Logger: logger})
	report, runErr := h.Run(context.Background(), input)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("failed to write report: %s", err)
		}
	}
	logger.Info("done", "comparisons", len(report.Comparisons), "differences", report.Differences())
	if runErr != nil {
		log.Fatalf("comparison failed: %s", runErr)
	}
	if report.Differences() > 0 {
		os.Exit(1)
	}
}
