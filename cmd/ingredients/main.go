package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"mealplanner/internal/cache"
	"mealplanner/internal/config"
	"mealplanner/internal/importer"
	"mealplanner/internal/ingredients"

	"github.com/joho/godotenv"
)

func main() {
	var parser string
	var file string
	var image string
	var noCache bool
	flag.StringVar(&parser, "parser", "", "Parser to use: rules, openai or gemini (default from PARSER_DEFAULT)")
	flag.StringVar(&parser, "p", "", "Parser to use (short form)")
	flag.StringVar(&file, "file", "", "Read ingredient text from this file instead of stdin")
	flag.StringVar(&file, "f", "", "Ingredient text file (short form)")
	flag.StringVar(&image, "image", "", "Parse a photo of an ingredient list instead of text")
	flag.BoolVar(&noCache, "no-cache", false, "Skip the parse result cache")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %s", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %s", err)
	}

	var c cache.Cache
	if !noCache {
		lc, err := cache.MakeCache(cfg.Cache)
		if err != nil {
			log.Fatalf("failed to create cache: %s", err)
		}
		c = lc
	}
	svc, err := importer.NewFromConfig(cfg, c)
	if err != nil {
		log.Fatalf("failed to create import service: %s", err)
	}
	strategy, err := importer.ParseStrategy(parser, svc.Default())
	if err != nil {
		log.Fatalf("%s", err)
	}

	ctx := context.Background()
	var out []ingredients.ParsedIngredient
	if image != "" {
		img, err := ingredients.ReadImage(image)
		if err != nil {
			log.Fatalf("failed to read image: %s", err)
		}
		out, err = svc.ParseImage(ctx, strategy, img)
		if err != nil {
			log.Fatalf("failed to parse image: %s", err)
		}
	} else {
		text, err := readInput(file)
		if err != nil {
			log.Fatalf("failed to read input: %s", err)
		}
		out, err = svc.Parse(ctx, strategy, text)
		if err != nil {
			log.Fatalf("failed to parse ingredients: %s", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("failed to write output: %s", err)
	}
}

func readInput(file string) (string, error) {
	if file == "" || file == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return string(b), nil
}
