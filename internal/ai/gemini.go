package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mealplanner/internal/config"
	"mealplanner/internal/ingredients"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiParser parses ingredients with a Gemini model.
type GeminiParser struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ ingredients.TextParser = (*GeminiParser)(nil)
var _ ingredients.ImageParser = (*GeminiParser)(nil)

func NewGeminiParser(cfg config.GeminiConfig, httpClient *http.Client) *GeminiParser {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &GeminiParser{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}
}

func (p *GeminiParser) Parse(ctx context.Context, text string) ([]ingredients.ParsedIngredient, error) {
	return p.generate(ctx, genai.Text(ingredients.TextPrompt(text)))
}

func (p *GeminiParser) ParseImage(ctx context.Context, img ingredients.Image) ([]ingredients.ParsedIngredient, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(ingredients.Prompt),
		genai.NewPartFromBytes(img.Data, img.MIMEType),
	}
	return p.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)})
}

func (p *GeminiParser) generate(ctx context.Context, contents []*genai.Content) ([]ingredients.ParsedIngredient, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: gemini: %w", ingredients.ErrParseFailed, ingredients.ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  p.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: p.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini client: %w", ingredients.ErrParseFailed, err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](temperature),
		MaxOutputTokens: maxResponseTokens,
	})
	if err != nil {
		slog.ErrorContext(ctx, "gemini request failed", "model", p.model, "error", err)
		return nil, fmt.Errorf("%w: gemini request failed: %w", ingredients.ErrParseFailed, err)
	}

	content := resp.Text()
	if strings.TrimSpace(content) == "" {
		slog.ErrorContext(ctx, "unexpected gemini response", "model", p.model, "candidates", len(resp.Candidates))
		return nil, fmt.Errorf("%w: gemini: %w", ingredients.ErrParseFailed, ingredients.ErrInvalidResponse)
	}
	if resp.UsageMetadata != nil {
		slog.InfoContext(ctx, "gemini usage", "model", p.model, "prompt_tokens", resp.UsageMetadata.PromptTokenCount, "completion_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}

	return ingredients.DecodeResponse(content), nil
}

// ModelFor names the model that serves requests; text and images share it.
func (p *GeminiParser) ModelFor(bool) string {
	return p.model
}
