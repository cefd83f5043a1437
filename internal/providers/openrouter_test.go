package providers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/models"
	"nicole-studio/internal/providers"
)

func TestOpenRouter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Nicole Studio", r.Header.Get("X-Title"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "google/gemini-2.0-flash-001", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, "hola", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"gen-1","object":"chat.completion","created":1700000000,"model":"google/gemini-2.0-flash-001","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Claro."}}],"usage":{"prompt_tokens":30,"completion_tokens":4,"total_tokens":34}}`)
	}))
	defer srv.Close()

	client := providers.NewOpenRouter(srv.URL+"/api/v1/", "or-key")
	out, err := client.Complete(context.Background(), "google/gemini-2.0-flash-001", "persona", "hola")
	require.NoError(t, err)
	assert.Equal(t, &providers.Completion{Content: "Claro.", InputTokens: 30, OutputTokens: 4}, out)
}

func TestOpenRouter_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantAuth   bool
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":{"message":"no"}}`, wantStatus: http.StatusForbidden, wantAuth: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, wantStatus: http.StatusUnauthorized, wantAuth: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"oops"}}`, wantStatus: http.StatusInternalServerError},
		{name: "malformed", status: http.StatusOK, body: `not json`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := providers.NewOpenRouter(srv.URL+"/", "k").Complete(context.Background(), "m", "s", "u")
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrUpstream)
			assert.Equal(t, tt.wantAuth, providers.IsAuthFailure(err))
			assert.Equal(t, 1, calls, "failed calls are not retried")

			if tt.wantStatus != 0 {
				var se *providers.StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStatus, se.StatusCode)
				assert.Equal(t, "openrouter chat", se.Provider)
			}
		})
	}
}

func TestOpenRouter_MissingKey(t *testing.T) {
	_, err := providers.NewOpenRouter("", "").Complete(context.Background(), "m", "s", "u")
	assert.ErrorIs(t, err, models.ErrMissingCredentials)
	assert.True(t, providers.IsAuthFailure(err))
}
