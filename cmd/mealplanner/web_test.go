package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealplanner/internal/cache"
	"mealplanner/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{Parser: config.ParserConfig{Default: "rules", CacheResults: true}}
}

func TestServerRoutes(t *testing.T) {
	mux, err := newMux(testConfig(), cache.NewFileCache(t.TempDir()))
	if err != nil {
		t.Fatalf("newMux: %v", err)
	}
	srv := httptest.NewServer(WithMiddleware(mux))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready = %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/ingredients/parse", "application/json", strings.NewReader(`{"text":"2 cups flour"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("parse = %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/recipes", "application/json", strings.NewReader(`{"name":"Bread","ingredientsText":"3 cups flour\n1 teaspoon yeast"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create recipe = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/plans/p1/shopping-list")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("shopping list = %d", resp.StatusCode)
	}
}

func TestRecovererReturns500(t *testing.T) {
	h := WithMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rr.Code)
	}
}
