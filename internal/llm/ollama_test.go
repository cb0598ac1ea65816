package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fmueller/voxserve/internal/refine"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerateSendsRawPrompt(t *testing.T) {
	t.Parallel()

	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "Hello there."})
	}))
	defer server.Close()

	model := NewOllama("qwen2.5:0.5b-instruct", server.URL+"/")
	out, err := model.Generate(context.Background(), "PROMPT", refine.GenerateOptions{MaxTokens: 512, Temperature: 0.3})
	require.NoError(t, err)
	require.Equal(t, "Hello there.", out)

	require.Equal(t, "qwen2.5:0.5b-instruct", got.Model)
	require.Equal(t, "PROMPT", got.Prompt)
	require.True(t, got.Raw)
	require.False(t, got.Stream)
	require.Equal(t, 512, got.Options.NumPredict)
	require.InDelta(t, 0.3, got.Options.Temperature, 1e-6)
}

func TestOllamaGenerateReportsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Error: "model not found"})
	}))
	defer server.Close()

	_, err := NewOllama("missing", server.URL).Generate(context.Background(), "PROMPT", refine.GenerateOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model not found")
}

func TestOllamaGenerateRejectsGarbage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer server.Close()

	_, err := NewOllama("m", server.URL).Generate(context.Background(), "PROMPT", refine.GenerateOptions{})
	require.Error(t, err)
}

func TestOllamaUsesChatMLAndDefaultURL(t *testing.T) {
	t.Parallel()

	model := NewOllama("m", "")
	require.Equal(t, DefaultOllamaURL, model.baseURL)

	prompt, err := model.Format(exchange)
	require.NoError(t, err)
	require.Contains(t, prompt, "<|im_start|>assistant\n")
}
