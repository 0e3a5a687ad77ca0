package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedtrans/internal/service/ai"
)

func TestNewProvider_Validation(t *testing.T) {
	_, err := ai.NewProvider(ai.Config{Provider: ai.ProviderOpenAI, Model: "gpt"})
	require.ErrorIs(t, err, ai.ErrMissingAPIKey)

	_, err = ai.NewProvider(ai.Config{Provider: ai.ProviderOpenAI, APIKey: "k"})
	require.ErrorIs(t, err, ai.ErrMissingModel)

	_, err = ai.NewProvider(ai.Config{Provider: ai.ProviderCompatible, APIKey: "k", Model: "m"})
	require.ErrorIs(t, err, ai.ErrMissingBaseURL)

	_, err = ai.NewProvider(ai.Config{Provider: "bard", APIKey: "k", Model: "m"})
	require.ErrorIs(t, err, ai.ErrInvalidProvider)

	for _, name := range []string{ai.ProviderOpenAI, ai.ProviderAnthropic} {
		p, err := ai.NewProvider(ai.Config{Provider: name, APIKey: "k", Model: "m"})
		require.NoError(t, err)
		require.Equal(t, name, p.Name())
	}
}

func TestIsRetryable(t *testing.T) {
	require.True(t, ai.IsRetryable(&ai.StatusError{Provider: "openai", StatusCode: 500, Err: errors.New("boom")}))
	require.True(t, ai.IsRetryable(fmt.Errorf("call: %w", &ai.StatusError{StatusCode: 503, Err: errors.New("busy")})))
	require.False(t, ai.IsRetryable(&ai.StatusError{StatusCode: 429, Err: errors.New("slow down")}))
	require.False(t, ai.IsRetryable(&ai.StatusError{StatusCode: 400, Err: errors.New("bad")}))
	require.False(t, ai.IsRetryable(context.Canceled))
	require.False(t, ai.IsRetryable(nil))
}

type chatRequest struct {
	Model       string   `json:"model"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"你好世界。"}}],
			"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`)
	}))
	defer srv.Close()

	p, err := ai.NewProvider(ai.Config{
		Provider:    ai.ProviderOpenAI,
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "gpt-3.5-turbo",
		MaxTokens:   3000,
		Temperature: 0.5,
		HTTPClient:  &http.Client{Timeout: 5 * time.Second},
	})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "你是一个翻译家", "Translate:", "Hello world.")
	require.NoError(t, err)
	require.Equal(t, "你好世界。", out.Text)
	require.Equal(t, ai.Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17}, out.Usage)

	require.Equal(t, "gpt-3.5-turbo", got.Model)
	require.Equal(t, 3000, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	require.InDelta(t, 0.5, *got.Temperature, 1e-9)
	require.Len(t, got.Messages, 3)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, "你是一个翻译家", got.Messages[0].Content)
	require.Equal(t, "user", got.Messages[1].Role)
	require.Equal(t, "Translate:", got.Messages[1].Content)
	require.Equal(t, "user", got.Messages[2].Role)
	require.Equal(t, "Hello world.", got.Messages[2].Content)
}

func TestOpenAIProvider_ServerErrorIsRetryable(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"internal","type":"server_error"}}`)
	}))
	defer srv.Close()

	p, err := ai.NewProvider(ai.Config{Provider: ai.ProviderOpenAI, APIKey: "k", BaseURL: srv.URL, Model: "gpt-3.5-turbo"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "", "", "Hello.")
	require.Error(t, err)
	require.True(t, ai.IsRetryable(err))
	require.Equal(t, 1, calls, "sdk retries are disabled")

	var se *ai.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestOpenAIProvider_ClientErrorIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p, err := ai.NewProvider(ai.Config{Provider: ai.ProviderCompatible, APIKey: "k", BaseURL: srv.URL, Model: "llama"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "", "", "Hello.")
	require.Error(t, err)
	require.False(t, ai.IsRetryable(err))
}

func TestAnthropicProvider_Complete(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"m1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"你好"},{"type":"text","text":"世界。"}],
			"stop_reason":"end_turn","usage":{"input_tokens":20,"output_tokens":7}}`)
	}))
	defer srv.Close()

	p, err := ai.NewProvider(ai.Config{Provider: ai.ProviderAnthropic, APIKey: "k", BaseURL: srv.URL, Model: "claude"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), "你是一个翻译家", "Translate:", "Hello world.")
	require.NoError(t, err)
	require.Equal(t, "你好世界。", out.Text)
	require.Equal(t, ai.Usage{PromptTokens: 20, CompletionTokens: 7, TotalTokens: 27}, out.Usage)

	require.Equal(t, "claude", got.Model)
	require.Equal(t, 4096, got.MaxTokens)
	require.Len(t, got.System, 1)
	require.Equal(t, "你是一个翻译家", got.System[0].Text)
	require.Len(t, got.Messages, 1)
	require.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 2)
	require.Equal(t, "Translate:", got.Messages[0].Content[0].Text)
	require.Equal(t, "Hello world.", got.Messages[0].Content[1].Text)
}

func TestRateLimiter(t *testing.T) {
	unlimited := ai.NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(context.Background()))
	}

	negative := ai.NewRateLimiter(-5)
	require.NoError(t, negative.Wait(context.Background()))
	require.NoError(t, negative.Wait(context.Background()))

	limited := ai.NewRateLimiter(1)
	require.NoError(t, limited.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, limited.Wait(ctx), "second call within the minute must wait past the deadline")
}
