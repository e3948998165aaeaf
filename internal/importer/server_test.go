package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealplanner/internal/ingredients"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newTestMux(prompt *fakePrompt) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(newTestService(prompt, nil)).Register(mux)
	return mux
}

func TestHandleParse(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakePrompt{})
	body := `{"text":"2 cups flour\n\nsalt and pepper to taste","parser":"rules"}`
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ingredients/parse", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp parseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, StrategyRules, resp.Parser)
	require.Len(t, resp.Ingredients, 3)
	assert.Equal(t, "flour", resp.Ingredients[0].Item)
	assert.Equal(t, "salt", resp.Ingredients[1].Item)
	assert.Equal(t, "pepper", resp.Ingredients[2].Item)
}

func TestHandleParseDefaultsToConfiguredParser(t *testing.T) {
	t.Parallel()

	prompt := &fakePrompt{out: []ingredients.ParsedIngredient{{Quantity: 1, Unit: "cup", Item: "rice", Category: ingredients.PastaRice}}}
	mux := newTestMux(prompt)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ingredients/parse", strings.NewReader(`{"text":"1 cup rice"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"parser":"gemini"`)
	assert.Contains(t, rr.Body.String(), `"category":"Pasta & Rice"`)
	assert.EqualValues(t, 1, prompt.calls.Load())
}

func TestHandleParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		err  error
		code int
		msg  string
	}{
		{name: "bad json", body: `{`, code: http.StatusBadRequest},
		{name: "empty text", body: `{"text":"  "}`, code: http.StatusBadRequest, msg: "text is required"},
		{name: "unknown parser", body: `{"text":"1 egg","parser":"llama"}`, code: http.StatusBadRequest, msg: "unknown parser"},
		{
			name: "upstream failure",
			body: `{"text":"1 egg"}`,
			err:  errors.Join(ingredients.ErrParseFailed, errors.New("status 500: secret upstream detail")),
			code: http.StatusBadGateway,
			msg:  "failed to parse ingredients, please try again",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&fakePrompt{err: tt.err})
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ingredients/parse", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.msg)
			assert.NotContains(t, rr.Body.String(), "secret")
		})
	}
}

func imageRequest(t *testing.T, parser string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("parser", parser))
	fw, err := mw.CreateFormFile("image", "list.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ingredients/parse-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleParseImage(t *testing.T) {
	t.Parallel()

	prompt := &fakePrompt{out: []ingredients.ParsedIngredient{{Quantity: 2, Item: "limes", Category: ingredients.Produce}}}
	mux := newTestMux(prompt)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, imageRequest(t, "gemini", pngHeader))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"item":"limes"`)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, imageRequest(t, "rules", pngHeader))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "does not accept images")

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, imageRequest(t, "gemini", []byte("just some text")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unreadable image")
	assert.EqualValues(t, 1, prompt.calls.Load())
}

func TestHandleDebug(t *testing.T) {
	t.Parallel()

	prompt := &fakePrompt{out: []ingredients.ParsedIngredient{
		{Quantity: 2, Unit: "cup", Item: "flour"},
		{Quantity: 1, Item: "egg"},
	}}
	mux := newTestMux(prompt)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ingredients/debug", strings.NewReader(`{"text":"2 cups flour"}`)))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp debugResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Report.Comparisons, 1)
	d := resp.Report.Comparisons[0].Parsers
	assert.True(t, d.LengthMismatch)
	assert.Equal(t, "gemini", d.Right)
	assert.Contains(t, strings.Join(resp.Lines, "\n"), "Index 1: missing in rule-based")
	assert.Empty(t, resp.Error)
}

func TestHandleDebugBuiltinCases(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakePrompt{err: errors.New("offline")})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/ingredients/debug", nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp debugResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Report.Comparisons)
	assert.Contains(t, resp.Error, "offline")
	assert.Equal(t, "Running standard test cases... cases=6", resp.Lines[0])
}

func TestHandleCategoriesAndSchema(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakePrompt{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ingredients/categories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var cats []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cats))
	require.Len(t, cats, 17)
	assert.Equal(t, "Produce", cats[0])
	assert.Equal(t, "Other", cats[16])

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ingredients/schema", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var schema map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, rr.Body.String())
	assert.Contains(t, props, "quantity")
	category, ok := props["category"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, category["enum"], 17)
}
