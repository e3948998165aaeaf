package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealplanner/internal/config"
	"mealplanner/internal/ingredients"
)

func geminiResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 10, "candidatesTokenCount": 5},
	})
	return string(body)
}

func newGeminiTestServer(t *testing.T, handler http.HandlerFunc) *GeminiParser {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGeminiParser(config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
	}, server.Client())
}

func TestGeminiParse(t *testing.T) {
	t.Parallel()

	var path, body string
	p := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiResponse("1.0 | (14 ounce) can | diced tomatoes | | Canned Goods\n0.0 | | salt | to taste")))
	})

	got, err := p.Parse(context.Background(), "1 (14 ounce) can diced tomatoes\nsalt to taste")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.HasSuffix(path, "models/gemini-2.0-flash:generateContent") {
		t.Fatalf("unexpected path %q", path)
	}
	if !strings.Contains(body, "Ingredients text to parse:") {
		t.Fatalf("prompt missing from request body: %s", body)
	}

	want := []ingredients.ParsedIngredient{
		{Quantity: 1, Unit: "(14 ounce) can", Item: "diced tomatoes", Category: ingredients.CannedGoods},
		{Quantity: 0, Unit: "", Item: "salt", Notes: "to taste", Category: ingredients.HerbsSpices},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d ingredients, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ingredient %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGeminiParseImage(t *testing.T) {
	t.Parallel()

	var body string
	p := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiResponse("2 | | eggs | beaten")))
	})

	got, err := p.ParseImage(context.Background(), ingredients.Image{Data: []byte("fake"), MIMEType: "image/png"})
	if err != nil {
		t.Fatalf("parse image: %v", err)
	}
	if len(got) != 1 || got[0].Item != "eggs" {
		t.Fatalf("unexpected result %+v", got)
	}
	if !strings.Contains(body, "inlineData") || !strings.Contains(body, "image/png") {
		t.Fatalf("image not inlined in request: %s", body)
	}
}

func TestGeminiFailures(t *testing.T) {
	t.Parallel()

	p := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, http.StatusInternalServerError)
	})
	if _, err := p.Parse(context.Background(), "2 cups flour"); !errors.Is(err, ingredients.ErrParseFailed) {
		t.Fatalf("expected ErrParseFailed, got %v", err)
	}

	empty := newGeminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	if _, err := empty.Parse(context.Background(), "2 cups flour"); !errors.Is(err, ingredients.ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}

	noKey := NewGeminiParser(config.GeminiConfig{}, nil)
	if _, err := noKey.Parse(context.Background(), "2 cups flour"); !errors.Is(err, ingredients.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
