package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/attachments"
	"nicole-studio/internal/blobs"
	"nicole-studio/internal/chat"
	"nicole-studio/internal/handlers"
	"nicole-studio/internal/models"
	"nicole-studio/internal/providers"
	"nicole-studio/internal/registry"
)

type upload struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/files", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newFilesRouter() (*gin.Engine, *attachments.Service) {
	svc := attachments.NewService(attachments.NewMemoryBackend(blobs.NewMemoryRepository(nil), "http://localhost:8080"), 0)
	h := handlers.NewFilesHandler(svc)
	router := gin.New()
	router.POST("/api/files", h.Upload)
	router.GET("/api/files/:id", h.GetFile)
	router.GET("/api/files/:id/content", h.GetContent)
	return router, svc
}

func TestFiles_UploadAndFetch(t *testing.T) {
	router, _ := newFilesRouter()
	pdf := []byte("%PDF-1.4 minimal")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t,
		upload{"ficha.pdf", "application/pdf", pdf},
		upload{"notas.txt", "text/plain", []byte("hola")},
	))
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode[models.FilesResponse](t, w)
	require.Len(t, resp.Files, 1)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "notas.txt")

	file := resp.Files[0]
	assert.Equal(t, "pdf", file.Type)
	assert.Equal(t, "ficha.pdf", file.Name)
	assert.Equal(t, int64(len(pdf)), file.SizeBytes)
	assert.Equal(t, "30d", file.Expiry.Label)
	assert.Equal(t, "normal", file.Expiry.Level)
	assert.Equal(t, "http://localhost:8080/api/files/"+file.ID+"/content", file.URL)

	w = doJSON(t, router, http.MethodGet, "/api/files/"+file.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, file.ID, decode[models.AttachmentResponse](t, w).ID)

	w = doJSON(t, router, http.MethodGet, "/api/files/"+file.ID+"/content", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, pdf, w.Body.Bytes())
}

func TestFiles_AllRejected(t *testing.T) {
	router, _ := newFilesRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, upload{"a.zip", "application/zip", []byte("PK")}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/files/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversations_MessageWithAttachment(t *testing.T) {
	filesRouter, svc := newFilesRouter()
	w := httptest.NewRecorder()
	filesRouter.ServeHTTP(w, multipartRequest(t, upload{"foto.png", "image/png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}}))
	require.Equal(t, http.StatusCreated, w.Code)
	fileID := decode[models.FilesResponse](t, w).Files[0].ID

	backend := &fakeChat{completion: &providers.Completion{Content: "**Bonita** pieza.", InputTokens: 10, OutputTokens: 20}}
	service := chat.NewService(registry.New(""), map[registry.Provider]providers.ChatBackend{registry.ProviderOpenRouter: backend}, nil)
	acc := newCosts()
	h := handlers.NewConversationsHandler(chat.NewConversations(service, acc), svc)

	router := gin.New()
	router.POST("/api/conversations", h.CreateConversation)
	router.GET("/api/conversations/:id", h.GetConversation)
	router.POST("/api/conversations/:id/messages", h.PostMessage)

	w = doJSON(t, router, http.MethodPost, "/api/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	convID := decode[models.ConversationResponse](t, w).ID

	w = doJSON(t, router, http.MethodPost, "/api/conversations/"+convID+"/messages", models.CreateMessageRequest{FileIDs: []string{fileID}})
	require.Equal(t, http.StatusOK, w.Code)
	turn := decode[models.ExchangeResponse](t, w)
	assert.Nil(t, turn.Assistant)
	require.Len(t, turn.User.Files, 1)
	assert.Equal(t, "image", turn.User.Files[0].Type)
	assert.Empty(t, backend.users)

	w = doJSON(t, router, http.MethodPost, "/api/conversations/"+convID+"/messages", models.CreateMessageRequest{Content: "¿Qué opinas?"})
	require.Equal(t, http.StatusOK, w.Code)
	turn = decode[models.ExchangeResponse](t, w)
	require.NotNil(t, turn.Assistant)
	assert.Equal(t, "Bonita pieza.", turn.Assistant.Content)
	assert.Greater(t, acc.Total(), 0.0)

	w = doJSON(t, router, http.MethodGet, "/api/conversations/"+convID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	conv := decode[models.ConversationResponse](t, w)
	assert.Len(t, conv.Messages, 3)
	assert.Equal(t, "¿Qué opinas?", conv.Title)

	w = doJSON(t, router, http.MethodPost, "/api/conversations/"+convID+"/messages", models.CreateMessageRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/conversations/"+convID+"/messages", models.CreateMessageRequest{Content: "x", FileIDs: []string{"nope"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/conversations/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
