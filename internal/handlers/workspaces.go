package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"nicole-studio/internal/models"
	"nicole-studio/internal/moodboard"
	"nicole-studio/internal/workspace"
)

type WorkspacesHandler struct {
	manager *workspace.Manager
}

func NewWorkspacesHandler(manager *workspace.Manager) *WorkspacesHandler {
	return &WorkspacesHandler{manager: manager}
}

func (h *WorkspacesHandler) workspace(c *gin.Context) (*workspace.Workspace, bool) {
	w, err := h.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err, "workspace not found")
		return nil, false
	}
	return w, true
}

func pieceIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid piece index"})
		return 0, false
	}
	return index, true
}

// CreateWorkspace godoc
// @Summary     Create a moodboard workspace
// @Tags        workspaces
// @Produce     json
// @Success     201 {object} models.WorkspaceResponse
// @Router      /workspaces [post]
func (h *WorkspacesHandler) CreateWorkspace(c *gin.Context) {
	w := h.manager.Create(c.Request.Context())
	c.JSON(http.StatusCreated, w.Snapshot())
}

// GetWorkspace godoc
// @Summary     Get a workspace
// @Tags        workspaces
// @Produce     json
// @Param       id path string true "Workspace ID"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id} [get]
func (h *WorkspacesHandler) GetWorkspace(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// DeleteWorkspace godoc
// @Summary     Delete a workspace and its staged images
// @Tags        workspaces
// @Param       id path string true "Workspace ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id} [delete]
func (h *WorkspacesHandler) DeleteWorkspace(c *gin.Context) {
	if err := h.manager.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "workspace not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// StageImages godoc
// @Summary     Stage moodboard images
// @Description Adds images to the workspace. Images beyond the third are ignored.
// @Description An analysis still running is discarded; the last analysis and its pieces are kept until the next one.
// @Tags        workspaces
// @Accept      json
// @Produce     json
// @Param       id      path string                    true "Workspace ID"
// @Param       request body models.StageImagesRequest true "Data URIs or http(s) URLs"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/images [post]
func (h *WorkspacesHandler) StageImages(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}

	var req models.StageImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Images) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: moodboard.MsgNoImages})
		return
	}

	images := make([]moodboard.Image, 0, len(req.Images))
	for i, ref := range req.Images {
		img, err := moodboard.ParseImageRef(ref)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid image",
				Message: fmt.Sprintf("image %d: %v", i, err),
			})
			return
		}
		images = append(images, img)
	}

	if _, err := w.StageImages(c.Request.Context(), images); err != nil {
		respondError(c, err, "failed to stage images")
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// RemoveImage godoc
// @Summary     Remove a staged image
// @Tags        workspaces
// @Produce     json
// @Param       id       path string true "Workspace ID"
// @Param       image_id path string true "Staged image ID"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/images/{image_id} [delete]
func (h *WorkspacesHandler) RemoveImage(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := w.RemoveImage(c.Request.Context(), c.Param("image_id")); err != nil {
		respondError(c, err, "image not found")
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// SetContext godoc
// @Summary     Set the designer context
// @Description Free text sent with the next analysis (collection, audience, main piece type).
// @Tags        workspaces
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Workspace ID"
// @Param       request body models.SetContextRequest true "Context text"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/context [put]
func (h *WorkspacesHandler) SetContext(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	var req models.SetContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	w.SetContext(req.Context)
	c.JSON(http.StatusOK, w.Snapshot())
}

// Analyze godoc
// @Summary     Analyze the staged moodboard
// @Description Runs one analysis and returns the workspace. Does nothing without staged images
// @Description or while another analysis is running. Provider failures leave the workspace
// @Description asking for more information.
// @Tags        workspaces
// @Produce     json
// @Param       id path string true "Workspace ID"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/analyze [post]
func (h *WorkspacesHandler) Analyze(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	w.Analyze(c.Request.Context())
	c.JSON(http.StatusOK, w.Snapshot())
}

// EditPiece godoc
// @Summary     Edit a piece description
// @Tags        workspaces
// @Accept      json
// @Produce     json
// @Param       id      path string                  true "Workspace ID"
// @Param       index   path int                     true "Piece index"
// @Param       request body models.EditPieceRequest true "New description"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/pieces/{index} [put]
func (h *WorkspacesHandler) EditPiece(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	index, ok := pieceIndex(c)
	if !ok {
		return
	}
	var req models.EditPieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := w.EditPiece(index, req.Description); err != nil {
		respondError(c, err, "piece not found")
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// SetRefinement godoc
// @Summary     Replace a piece refinement
// @Tags        workspaces
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Workspace ID"
// @Param       index   path int                      true "Piece index"
// @Param       request body models.RefinementRequest true "Refinement text"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/pieces/{index}/refinement [put]
func (h *WorkspacesHandler) SetRefinement(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	index, ok := pieceIndex(c)
	if !ok {
		return
	}
	var req models.RefinementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := w.SetRefinement(index, req.Refinement); err != nil {
		respondError(c, err, "piece not found")
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// AddChip godoc
// @Summary     Append a refinement chip
// @Description Appends the phrase to the piece refinement, separated by a comma.
// @Tags        workspaces
// @Accept      json
// @Produce     json
// @Param       id      path string            true "Workspace ID"
// @Param       index   path int               true "Piece index"
// @Param       request body models.ChipRequest true "Chip phrase"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/pieces/{index}/chips [post]
func (h *WorkspacesHandler) AddChip(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	index, ok := pieceIndex(c)
	if !ok {
		return
	}
	var req models.ChipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if err := w.AddChip(index, req.Chip); err != nil {
		respondError(c, err, "could not add chip")
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// GeneratePiece godoc
// @Summary     Generate one piece image
// @Description Generates or regenerates the image for a piece from its description and refinement.
// @Description A piece already generating is left alone. On failure the previous image is kept.
// @Tags        workspaces
// @Produce     json
// @Param       id    path string true "Workspace ID"
// @Param       index path int    true "Piece index"
// @Success     200 {object} models.WorkspaceResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /workspaces/{id}/pieces/{index}/generate [post]
func (h *WorkspacesHandler) GeneratePiece(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	index, ok := pieceIndex(c)
	if !ok {
		return
	}
	outcome, err := w.GeneratePiece(c.Request.Context(), index)
	if err != nil {
		msg := moodboard.GenerateErrorMessage(err)
		if outcome == workspace.OutcomeSkipped {
			msg = "piece not found"
		}
		respondError(c, err, msg)
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

// GenerateAll godoc
// @Summary     Generate every missing piece image
// @Description Generates pieces one after another, skipping those that already have an image.
// @Description A failed piece does not stop the rest.
// @Tags        workspaces
// @Produce     json
// @Param       id path string true "Workspace ID"
// @Success     200 {object} models.GenerateAllResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /workspaces/{id}/generate-all [post]
func (h *WorkspacesHandler) GenerateAll(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	res := w.GenerateAll(c.Request.Context())
	c.JSON(http.StatusOK, models.GenerateAllResponse{
		Workspace: w.Snapshot(),
		Generated: res.Generated,
		Skipped:   res.Skipped,
		Failed:    res.Failed,
	})
}
