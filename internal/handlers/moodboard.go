package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/models"
	"nicole-studio/internal/moodboard"
)

type MoodboardAnalyzer interface {
	Ready() error
	Analyze(ctx context.Context, images []moodboard.Image, designerContext string) (moodboard.Result, error)
}

type PieceGenerator interface {
	Generate(ctx context.Context, description string) (*moodboard.PieceImage, error)
}

type CostTracker interface {
	Add(ctx context.Context, delta float64) float64
	Total() float64
}

type MoodboardHandler struct {
	analyzer  MoodboardAnalyzer
	generator PieceGenerator
	costs     CostTracker
}

func NewMoodboardHandler(analyzer MoodboardAnalyzer, generator PieceGenerator, costs CostTracker) *MoodboardHandler {
	return &MoodboardHandler{analyzer: analyzer, generator: generator, costs: costs}
}

// Analyze godoc
// @Summary     Analyze a moodboard
// @Description Reads 1 to 3 moodboard images and returns the design DNA with three piece proposals,
// @Description or a request for more context when the images are not enough.
// @Description Images are data URIs (data:image/...;base64,...) or http(s) URLs.
// @Tags        moodboard
// @Accept      json
// @Produce     json
// @Param       request body models.AnalyzeRequest true "Images and optional designer context"
// @Success     200 {object} models.AnalyzeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /moodboard/analyze [post]
func (h *MoodboardHandler) Analyze(c *gin.Context) {
	if err := h.analyzer.Ready(); err != nil {
		respondError(c, err, moodboard.AnalyzeErrorMessage(err))
		return
	}

	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: moodboard.MsgNoImages, Message: err.Error()})
		return
	}
	switch {
	case len(req.Images) == 0:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: moodboard.MsgNoImages})
		return
	case len(req.Images) > moodboard.MaxImages:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: moodboard.MsgTooManyImages})
		return
	}

	ctx := c.Request.Context()
	images := parseImageRefs(ctx, req.Images)
	if len(images) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: moodboard.MsgNoImages})
		return
	}

	result, err := h.analyzer.Analyze(ctx, images, strings.TrimSpace(req.Context))
	if err != nil {
		respondError(c, err, moodboard.AnalyzeErrorMessage(err))
		return
	}

	c.JSON(http.StatusOK, analyzeResponse(result))
}

// GenerateImage godoc
// @Summary     Generate a piece image
// @Description Renders one jewelry piece description as a product photo and returns it as a data URI.
// @Description Each successful call adds its fixed cost to the running total.
// @Tags        moodboard
// @Accept      json
// @Produce     json
// @Param       request body models.GenerateImageRequest true "Piece description"
// @Success     200 {object} models.GenerateImageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /moodboard/generate-image [post]
func (h *MoodboardHandler) GenerateImage(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Piece) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: moodboard.MsgMissingPiece})
		return
	}

	ctx := c.Request.Context()
	img, err := h.generator.Generate(ctx, strings.TrimSpace(req.Piece))
	if err != nil {
		respondError(c, err, moodboard.GenerateErrorMessage(err))
		return
	}
	h.costs.Add(ctx, img.CostUSD)

	c.JSON(http.StatusOK, models.GenerateImageResponse{ImageURL: img.ImageURI, CostUSD: img.CostUSD})
}

// parseImageRefs drops references that cannot be decoded.
func parseImageRefs(ctx context.Context, refs []string) []moodboard.Image {
	images := make([]moodboard.Image, 0, len(refs))
	for i, ref := range refs {
		img, err := moodboard.ParseImageRef(ref)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("index", i).Msg("skipping invalid image reference")
			continue
		}
		images = append(images, img)
	}
	return images
}

func analyzeResponse(result moodboard.Result) models.AnalyzeResponse {
	switch r := result.(type) {
	case *moodboard.DesignResult:
		return models.AnalyzeResponse{
			DNA:    &models.DNAResponse{Lines: r.DNA.Lines, Textures: r.DNA.Textures, Mood: r.DNA.Mood},
			Pieces: append([]string{}, r.Pieces...),
		}
	case *moodboard.NeedMoreInfoResult:
		return models.AnalyzeResponse{
			NeedMoreInfo: true,
			WhatISee:     r.WhatISee,
			Questions:    append([]string{}, r.Questions...),
		}
	default:
		fallback := moodboard.ParseFallback()
		return models.AnalyzeResponse{NeedMoreInfo: true, WhatISee: fallback.WhatISee, Questions: fallback.Questions}
	}
}
