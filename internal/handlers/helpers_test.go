package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/costs"
	"nicole-studio/internal/moodboard"
	"nicole-studio/internal/providers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func newCosts() *costs.Accumulator {
	return costs.NewAccumulator(context.Background(), costs.NewMemoryStore(""), nil)
}

type fakeChat struct {
	completion *providers.Completion
	err        error
	users      []string
}

func (f *fakeChat) Complete(ctx context.Context, model, system, user string) (*providers.Completion, error) {
	f.users = append(f.users, user)
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

type fakeAnalyzer struct {
	result   moodboard.Result
	err      error
	readyErr error
	images   []moodboard.Image
	ctx      string
}

func (f *fakeAnalyzer) Ready() error { return f.readyErr }

func (f *fakeAnalyzer) Analyze(ctx context.Context, images []moodboard.Image, designerContext string) (moodboard.Result, error) {
	f.images = images
	f.ctx = designerContext
	return f.result, f.err
}

type fakeGenerator struct {
	mu      sync.Mutex
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, description string) (*moodboard.PieceImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, description)
	if f.err != nil {
		return nil, f.err
	}
	return &moodboard.PieceImage{ImageURI: "data:image/png;base64,AAAA", CostUSD: moodboard.CostPerImage}, nil
}

const pngDataURI = "data:image/png;base64,iVBORw0KGgo="
