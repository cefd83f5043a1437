package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/attachments"
	"nicole-studio/internal/models"
)

const maxUploadMemory = 32 << 20

type FilesHandler struct {
	attachments *attachments.Service
	now         func() time.Time
}

func NewFilesHandler(attachments *attachments.Service) *FilesHandler {
	return &FilesHandler{attachments: attachments, now: time.Now}
}

// Upload godoc
// @Summary     Upload chat attachments
// @Description Stores images and PDFs for use in conversation messages. Each file expires after 30 days.
// @Description Other file types are rejected per file; the rest of the batch is still stored.
// @Tags        files
// @Accept      multipart/form-data
// @Produce     json
// @Param       files formData file true "Images or PDFs (multiple files allowed)"
// @Success     201 {object} models.FilesResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /files [post]
func (h *FilesHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: "send one or more files in the \"files\" field",
		})
		return
	}

	ctx := c.Request.Context()
	resp := models.FilesResponse{Files: []models.AttachmentResponse{}}
	for _, fh := range form.File["files"] {
		a, err := h.store(c, fh)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("filename", fh.Filename).Msg("attachment rejected")
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", fh.Filename, err))
			continue
		}
		resp.Files = append(resp.Files, a.Response(h.now()))
	}

	if len(resp.Files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files stored",
			Message: fmt.Sprint(resp.Errors),
		})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FilesHandler) store(c *gin.Context, fh *multipart.FileHeader) (attachments.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return attachments.Attachment{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return attachments.Attachment{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return h.attachments.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), data)
}

// GetFile godoc
// @Summary     Attachment metadata
// @Tags        files
// @Produce     json
// @Param       id path string true "Attachment ID"
// @Success     200 {object} models.AttachmentResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /files/{id} [get]
func (h *FilesHandler) GetFile(c *gin.Context) {
	a, err := h.attachments.Get(c.Param("id"))
	if err != nil {
		respondError(c, err, "file not found")
		return
	}
	c.JSON(http.StatusOK, a.Response(h.now()))
}

// GetContent godoc
// @Summary     Attachment bytes
// @Tags        files
// @Produce     octet-stream
// @Param       id path string true "Attachment ID"
// @Success     200 {file} binary
// @Failure     404 {object} models.ErrorResponse
// @Router      /files/{id}/content [get]
func (h *FilesHandler) GetContent(c *gin.Context) {
	a, blob, err := h.attachments.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "file not found")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", a.Name))
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
