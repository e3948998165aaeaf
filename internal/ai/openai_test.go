package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"mealplanner/internal/config"
	"mealplanner/internal/ingredients"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipeLines = `Here are the parsed ingredients:
2.0 | cups | flour | | Pantry
0.5 | tablespoon | salt |
nonsense | line
`

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) (*OpenAIParser, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	p := NewOpenAIParser(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
	}, server.Client())
	return p, &hits
}

func TestOpenAIParse(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	p, hits := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletion(pipeLines)))
	})

	got, err := p.Parse(context.Background(), "2 cups flour\n1/2 tablespoon salt")
	require.NoError(t, err)
	assert.Equal(t, []ingredients.ParsedIngredient{
		{Quantity: 2, Unit: "cups", Item: "flour", Category: ingredients.Pantry},
		{Quantity: 0.5, Unit: "tablespoon", Item: "salt", Category: ingredients.HerbsSpices},
	}, got)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	assert.Equal(t, "gpt-4", captured["model"])
	assert.InDelta(t, 0.1, captured["temperature"], 1e-9)
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.True(t, strings.HasSuffix(msg["content"].(string), "Ingredients text to parse:\n2 cups flour\n1/2 tablespoon salt"))
}

func TestOpenAIParseImage(t *testing.T) {
	t.Parallel()

	var body string
	p, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var captured map[string]any
		_ = json.NewDecoder(r.Body).Decode(&captured)
		raw, _ := json.Marshal(captured)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletion("1 | | egg | |")))
	})

	img := ingredients.Image{Data: []byte("fake"), MIMEType: "image/jpeg"}
	got, err := p.ParseImage(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, body, `"model":"gpt-4o"`)
	assert.Contains(t, body, `"image_url"`)
	assert.Contains(t, body, "data:image/jpeg;base64,ZmFrZQ==")
}

func TestOpenAIFailuresAreFatal(t *testing.T) {
	t.Parallel()

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		p, hits := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
		})
		_, err := p.Parse(context.Background(), "2 cups flour")
		require.ErrorIs(t, err, ingredients.ErrParseFailed)
		assert.EqualValues(t, 1, atomic.LoadInt32(hits), "no retries")
	})

	t.Run("no choices", func(t *testing.T) {
		t.Parallel()
		p, _ := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`))
		})
		_, err := p.Parse(context.Background(), "2 cups flour")
		require.ErrorIs(t, err, ingredients.ErrParseFailed)
		assert.ErrorIs(t, err, ingredients.ErrInvalidResponse)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		p := NewOpenAIParser(config.OpenAIConfig{BaseURL: "http://127.0.0.1:1/"}, nil)
		_, err := p.Parse(context.Background(), "2 cups flour")
		require.ErrorIs(t, err, ingredients.ErrMissingAPIKey)
		assert.True(t, errors.Is(err, ingredients.ErrParseFailed))
	})
}

func TestOpenAIModelFor(t *testing.T) {
	t.Parallel()

	p := NewOpenAIParser(config.OpenAIConfig{APIKey: "k", Model: "gpt-4.1"}, nil)
	assert.Equal(t, "gpt-4.1", p.ModelFor(false))
	assert.Equal(t, defaultOpenAIVisionModel, p.ModelFor(true))
}
