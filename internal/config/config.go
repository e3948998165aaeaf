package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	OpenAI OpenAIConfig `json:"openai"`
	Gemini GeminiConfig `json:"gemini"`
	Parser ParserConfig `json:"parser"`
	Cache  CacheConfig  `json:"cache"`
}

type OpenAIConfig struct {
	APIKey      string `json:"api_key"`
	Model       string `json:"model"`
	VisionModel string `json:"vision_model"`
	BaseURL     string `json:"base_url"` // any chat completions compatible endpoint
}

type GeminiConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

type ParserConfig struct {
	Default      string `json:"default"` // "rules", "openai" or "gemini"
	CacheResults bool   `json:"cache_results"`
}

type CacheConfig struct {
	Dir              string `json:"dir"`
	AzureAccountName string `json:"azure_account_name"`
	AzureAccountKey  string `json:"-"`
	AzureContainer   string `json:"azure_container"`
}

func Load() (*Config, error) {
	cacheResults, err := strconv.ParseBool(getEnvOrDefault("PARSER_CACHE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PARSER_CACHE: %w", err)
	}

	config := &Config{
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4"),
			VisionModel: getEnvOrDefault("OPENAI_VISION_MODEL", "gpt-4o"),
			BaseURL:     os.Getenv("OPENAI_BASE_URL"),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL: os.Getenv("GEMINI_BASE_URL"),
		},
		Parser: ParserConfig{
			Default:      strings.ToLower(getEnvOrDefault("PARSER_DEFAULT", "gemini")),
			CacheResults: cacheResults,
		},
		Cache: CacheConfig{
			Dir:              getEnvOrDefault("CACHE_DIR", "cache"),
			AzureAccountName: os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AzureAccountKey:  os.Getenv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"),
			AzureContainer:   getEnvOrDefault("AZURE_STORAGE_CONTAINER", "mealplanner"),
		},
	}

	switch config.Parser.Default {
	case "rules", "openai", "gemini":
	default:
		return nil, fmt.Errorf("invalid PARSER_DEFAULT %q: want rules, openai or gemini", config.Parser.Default)
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
