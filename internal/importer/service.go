// Package importer is the ingredient import service: it picks a parser
// strategy, caches prompt-driven results and serves the import endpoints.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mealplanner/internal/ai"
	"mealplanner/internal/cache"
	"mealplanner/internal/config"
	"mealplanner/internal/ingredients"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mealplanner/importer")

type Strategy string

const (
	StrategyRules  Strategy = "rules"
	StrategyOpenAI Strategy = "openai"
	StrategyGemini Strategy = "gemini"
)

var (
	ErrUnknownStrategy  = errors.New("unknown parser")
	ErrImageUnsupported = errors.New("parser does not accept images")
)

// ParseStrategy accepts a strategy name case-insensitively. An empty name
// returns def.
func ParseStrategy(s string, def Strategy) (Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	switch st := Strategy(s); st {
	case StrategyRules, StrategyOpenAI, StrategyGemini:
		return st, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownStrategy, s)
}

// prompt strategies cost money per call, so their results are cached
func (s Strategy) cached() bool {
	return s != StrategyRules
}

// modelNamer is implemented by parsers backed by a hosted model. The model
// name is part of the result cache key.
type modelNamer interface {
	ModelFor(image bool) string
}

var promptVersion = func() string {
	h := fnv.New32a()
	_, _ = io.WriteString(h, ingredients.Prompt)
	return fmt.Sprintf("%08x", h.Sum32())
}()

type Service struct {
	parsers  map[Strategy]ingredients.TextParser
	fallback Strategy
	cache    cache.Cache
}

// NewService serves the given parsers. A nil cache disables result caching.
func NewService(def Strategy, parsers map[Strategy]ingredients.TextParser, c cache.Cache) *Service {
	return &Service{parsers: parsers, fallback: def, cache: c}
}

// NewFromConfig wires the rule parser and both prompt-driven parsers.
func NewFromConfig(cfg *config.Config, c cache.Cache) (*Service, error) {
	def, err := ParseStrategy(cfg.Parser.Default, StrategyGemini)
	if err != nil {
		return nil, err
	}
	if !cfg.Parser.CacheResults {
		c = nil
	}
	httpClient := &http.Client{Timeout: 90 * time.Second}
	return NewService(def, map[Strategy]ingredients.TextParser{
		StrategyRules:  ingredients.RuleParser{},
		StrategyOpenAI: ai.NewOpenAIParser(cfg.OpenAI, httpClient),
		StrategyGemini: ai.NewGeminiParser(cfg.Gemini, httpClient),
	}, c), nil
}

func (s *Service) Default() Strategy {
	return s.fallback
}

// Parser returns the raw parser behind a strategy.
func (s *Service) Parser(strategy Strategy) (ingredients.TextParser, error) {
	p, ok := s.parsers[strategy]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, strategy)
	}
	return p, nil
}

// Parse runs text through the chosen strategy and drops records without an
// item.
func (s *Service) Parse(ctx context.Context, strategy Strategy, text string) ([]ingredients.ParsedIngredient, error) {
	p, err := s.Parser(strategy)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, "importer.Parse", strategy, modelName(p, false), []byte(text), func(ctx context.Context) ([]ingredients.ParsedIngredient, error) {
		return p.Parse(ctx, text)
	})
}

// ParseImage runs a photographed ingredient list through the chosen strategy.
func (s *Service) ParseImage(ctx context.Context, strategy Strategy, img ingredients.Image) ([]ingredients.ParsedIngredient, error) {
	p, err := s.Parser(strategy)
	if err != nil {
		return nil, err
	}
	ip, ok := p.(ingredients.ImageParser)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImageUnsupported, strategy)
	}
	return s.run(ctx, "importer.ParseImage", strategy, modelName(p, true), img.Data, func(ctx context.Context) ([]ingredients.ParsedIngredient, error) {
		return ip.ParseImage(ctx, img)
	})
}

func modelName(p ingredients.TextParser, image bool) string {
	if m, ok := p.(modelNamer); ok {
		return m.ModelFor(image)
	}
	return ""
}

func (s *Service) run(ctx context.Context, op string, strategy Strategy, model string, input []byte, parse func(context.Context) ([]ingredients.ParsedIngredient, error)) ([]ingredients.ParsedIngredient, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("parser", string(strategy)), attribute.String("model", model), attribute.Int("input.bytes", len(input)))

	useCache := s.cache != nil && strategy.cached()
	key := cacheKey(op, strategy, model, input)
	if useCache {
		if out, ok := s.fromCache(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			slog.InfoContext(ctx, "serving cached ingredients", "parser", strategy, "count", len(out))
			return out, nil
		}
	}

	start := time.Now()
	out, err := parse(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		slog.ErrorContext(ctx, "ingredient parse failed", "parser", strategy, "duration", time.Since(start), "error", err)
		return nil, err
	}
	out = ingredients.WithoutEmptyItems(out)
	span.SetAttributes(attribute.Int("ingredients", len(out)))
	slog.InfoContext(ctx, "parsed ingredients", "parser", strategy, "count", len(out), "duration", time.Since(start))

	// an empty result asks the user to retry, so it must reach the model again
	if useCache && len(out) > 0 {
		if err := s.cache.Put(ctx, key, string(lo.Must(json.Marshal(out))), cache.Unconditional()); err != nil {
			slog.WarnContext(ctx, "failed to cache ingredients", "key", key, "error", err)
		}
	}
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]ingredients.ParsedIngredient, bool) {
	r, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.WarnContext(ctx, "failed to read ingredient cache", "key", key, "error", err)
		}
		return nil, false
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	var out []ingredients.ParsedIngredient
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.WarnContext(ctx, "corrupt ingredient cache entry", "key", key, "error", err)
		return nil, false
	}
	return out, true
}

func cacheKey(op string, strategy Strategy, model string, input []byte) string {
	h := fnv.New64a()
	for _, part := range []string{op, string(strategy), model, promptVersion} {
		_, _ = io.WriteString(h, part)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(input)
	return fmt.Sprintf("ingredients/%s/%016x", strategy, h.Sum64())
}
