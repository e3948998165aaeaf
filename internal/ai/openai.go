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

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultOpenAIModel       = "gpt-4"
	defaultOpenAIVisionModel = "gpt-4o"
	maxResponseTokens        = 1000
	temperature              = 0.1
)

// OpenAIParser parses ingredients with an OpenAI chat completions model.
type OpenAIParser struct {
	apiKey      string
	model       string
	visionModel string
	client      openai.Client
}

var _ ingredients.TextParser = (*OpenAIParser)(nil)
var _ ingredients.ImageParser = (*OpenAIParser)(nil)

// NewOpenAIParser creates a parser. A missing key is reported by the first
// Parse call rather than here.
func NewOpenAIParser(cfg config.OpenAIConfig, httpClient *http.Client) *OpenAIParser {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	visionModel := strings.TrimSpace(cfg.VisionModel)
	if visionModel == "" {
		visionModel = defaultOpenAIVisionModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIParser{
		apiKey:      cfg.APIKey,
		model:       model,
		visionModel: visionModel,
		client:      openai.NewClient(opts...),
	}
}

func (p *OpenAIParser) Parse(ctx context.Context, text string) ([]ingredients.ParsedIngredient, error) {
	msg := openai.UserMessage(ingredients.TextPrompt(text))
	return p.complete(ctx, p.model, msg)
}

func (p *OpenAIParser) ParseImage(ctx context.Context, img ingredients.Image) ([]ingredients.ParsedIngredient, error) {
	msg := openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(ingredients.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: img.DataURL(),
		}),
	})
	return p.complete(ctx, p.visionModel, msg)
}

func (p *OpenAIParser) complete(ctx context.Context, model string, msg openai.ChatCompletionMessageParamUnion) ([]ingredients.ParsedIngredient, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openai: %w", ingredients.ErrParseFailed, ingredients.ErrMissingAPIKey)
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            []openai.ChatCompletionMessageParamUnion{msg},
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxResponseTokens),
	})
	if err != nil {
		slog.ErrorContext(ctx, "openai request failed", "model", model, "error", err)
		return nil, fmt.Errorf("%w: openai request failed: %w", ingredients.ErrParseFailed, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		slog.ErrorContext(ctx, "unexpected openai response", "model", model, "id", resp.ID)
		return nil, fmt.Errorf("%w: openai: %w", ingredients.ErrParseFailed, ingredients.ErrInvalidResponse)
	}
	slog.InfoContext(ctx, "openai usage", "model", model, "prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)

	return ingredients.DecodeResponse(resp.Choices[0].Message.Content), nil
}

// ModelFor names the model that serves text or image requests.
func (p *OpenAIParser) ModelFor(image bool) string {
	if image {
		return p.visionModel
	}
	return p.model
}
