package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

func TestGemini_Generate(t *testing.T) {
	t.Run("returns the candidate text", func(t *testing.T) {
		var gotPath string
		var gotBody geminiRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{{"text": "  Revenue is trending up.  "}}}},
				},
			})
		}))
		defer server.Close()

		g := NewGemini(Config{APIKey: "test-key", Endpoint: server.URL})

		text, err := g.Generate(context.Background(), "explain the forecast")

		require.NoError(t, err)
		assert.Equal(t, "Revenue is trending up.", text)
		assert.Equal(t, "/"+defaultModel+":generateContent", gotPath)
		require.Len(t, gotBody.Contents, 1)
		require.Len(t, gotBody.Contents[0].Parts, 1)
		assert.Equal(t, "explain the forecast", gotBody.Contents[0].Parts[0].Text)
	})

	t.Run("non-200 status surfaces as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":429,"message":"quota exceeded"}}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		g := NewGemini(Config{APIKey: "test-key", Endpoint: server.URL})

		_, err := g.Generate(context.Background(), "prompt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("api error body surfaces as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"invalid key"}}`))
		}))
		defer server.Close()

		g := NewGemini(Config{APIKey: "bad", Endpoint: server.URL})

		_, err := g.Generate(context.Background(), "prompt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid key")
	})

	t.Run("empty candidates surface as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		g := NewGemini(Config{APIKey: "test-key", Endpoint: server.URL})

		_, err := g.Generate(context.Background(), "prompt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("cancelled context aborts the call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(50 * time.Millisecond)
		}))
		defer server.Close()

		g := NewGemini(Config{APIKey: "test-key", Endpoint: server.URL})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := g.Generate(ctx, "prompt")

		require.Error(t, err)
	})
}

func TestBuildPrompt(t *testing.T) {
	mape := 7.5
	prompt := BuildPrompt(
		"Forecast report for revenue.",
		map[domain.Dimension]string{
			domain.DimCountry:     "Germany",
			domain.DimProductLine: "Road Bikes",
		},
		domain.Metrics{
			DataPoints:      120,
			ForecastPeriods: 12,
			MAPE:            &mape,
			LatestActual:    980.5,
			LatestForecast:  1020.25,
		},
		[]domain.ForecastPoint{
			{Period: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Value: 1000},
			{Period: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Value: 1010},
		},
	)

	assert.Contains(t, prompt, "senior business analyst")
	assert.Contains(t, prompt, "- Country: Germany")
	assert.Contains(t, prompt, "- Product Line: Road Bikes")
	assert.Contains(t, prompt, "- MAPE: 7.50%")
	assert.Contains(t, prompt, "- 2026-01: 1000.00")
	assert.Contains(t, prompt, "Forecast report for revenue.")
	assert.Contains(t, prompt, "Respond with Markdown.")
}
