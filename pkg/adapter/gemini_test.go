package adapter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/journal/pkg/adapter"
	"github.com/m-mizutani/journal/pkg/model"
	"github.com/m-mizutani/journal/pkg/parser"
)

func TestGeminiGenerateWithStubServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"[{\"action\":\"buy\",\"name\":\"Coffee\",\"price\":4.5,\"time\":\"2024-01-01T00:00:00Z\"}]"}]}}]}`))
	}))
	defer srv.Close()

	g := adapter.NewGemini(adapter.WithGeminiBaseURL(srv.URL))
	c, err := g.Generate(context.Background(), "test-key", "bought a coffee")
	gt.NoError(t, err)
	gt.Equal(t, c.Provider, model.ProviderGemini)

	text, err := parser.ExtractText(c)
	gt.NoError(t, err)
	gt.S(t, text).Contains("Coffee")
}

func TestGeminiGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	g := adapter.NewGemini(adapter.WithGeminiBaseURL(srv.URL))
	_, err := g.Generate(context.Background(), "bad-key", "hello")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrAPI))
}

func TestGeminiGenerateLive(t *testing.T) {
	apiKey := os.Getenv("TEST_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("TEST_GEMINI_API_KEY is not set")
	}

	g := adapter.NewGemini(adapter.WithInstruction(`Reply with a JSON list of actions. A purchase is {"action":"buy","name":string,"price":number|null,"time":ISO-8601}.`))
	c, err := g.Generate(context.Background(), apiKey, "I bought a coffee for 4.5")
	gt.NoError(t, err)

	result := parser.Parse(context.Background(), c)
	t.Log("response:", result.Text)
}
