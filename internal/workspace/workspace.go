package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/blobs"
	"nicole-studio/internal/models"
	"nicole-studio/internal/moodboard"
)

type State string

const (
	StateEmpty        State = "empty"
	StateImagesStaged State = "images_staged"
	StateAnalyzing    State = "analyzing"
	StateAnalyzed     State = "analyzed"
	StateNeedsInfo    State = "needs_info"
)

type PieceState string

const (
	PieceEditing    PieceState = "editing"
	PieceGenerating PieceState = "generating"
	PieceHasImage   PieceState = "has_image"
)

// Outcome reports what a long-running action did to the workspace.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped: preconditions not met, nothing was sent upstream.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeStale: the call finished after the workspace moved on.
	OutcomeStale  Outcome = "stale"
	OutcomeFailed Outcome = "failed"
)

// RefineChips are the preset refinement phrases.
var RefineChips = []string{
	"Más minimal",
	"Añadir perla",
	"Plata en vez de oro",
	"Dorado en vez de plata",
	"Fondo gris",
	"Más escultórico",
}

// Chips returns a copy of RefineChips.
func Chips() []string {
	return append([]string(nil), RefineChips...)
}

var analysisErrorQuestions = []string{
	"¿Puedes subir imágenes más claras del moodboard?",
	"¿Hay algún contexto de colección que quieras añadir?",
}

type Analyzer interface {
	Analyze(ctx context.Context, images []moodboard.Image, designerContext string) (moodboard.Result, error)
}

type Generator interface {
	Generate(ctx context.Context, description string) (*moodboard.PieceImage, error)
}

type Costs interface {
	Add(ctx context.Context, delta float64) float64
	Total() float64
}

type stagedImage struct {
	id     string
	url    string
	mime   string
	size   int
	stored bool
}

type piece struct {
	description string
	refinement  string
	imageURI    string
	inFlight    bool
}

func (p *piece) effectivePrompt() string {
	if ref := strings.TrimSpace(p.refinement); ref != "" {
		return p.description + ". Refinamiento: " + ref
	}
	return p.description
}

func (p *piece) state() PieceState {
	switch {
	case p.inFlight:
		return PieceGenerating
	case p.imageURI != "":
		return PieceHasImage
	default:
		return PieceEditing
	}
}

// Workspace is one moodboard session. The lock is never held across a
// provider call. epoch is bumped whenever the staged images or the
// analysis change, and analysis results carrying an older epoch are
// dropped. pieceEpoch is bumped only when the piece table is cleared, so
// generated images survive newly staged images.
type Workspace struct {
	mu sync.Mutex
	id string

	analyzer  Analyzer
	generator Generator
	costs     Costs
	blobs     blobs.Repository
	imageTTL  time.Duration

	images    []stagedImage
	context   string
	analyzing bool
	epoch     uint64

	pieceEpoch uint64

	dna          *moodboard.DNA
	needMoreInfo *moodboard.NeedMoreInfoResult
	pieces       []*piece
}

func (w *Workspace) ID() string { return w.id }

func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Workspace) stateLocked() State {
	switch {
	case w.analyzing:
		return StateAnalyzing
	case w.needMoreInfo != nil:
		return StateNeedsInfo
	case w.dna != nil:
		return StateAnalyzed
	case len(w.images) > 0:
		return StateImagesStaged
	default:
		return StateEmpty
	}
}

// invalidateLocked drops the analysis outcome and the whole piece table,
// and orphans any in-flight analysis or generation.
func (w *Workspace) invalidateLocked() {
	w.epoch++
	w.pieceEpoch++
	w.analyzing = false
	w.dna = nil
	w.needMoreInfo = nil
	w.pieces = nil
}

// StageImages adds images up to the cap. Extra images are dropped without
// error; the number accepted is returned.
func (w *Workspace) StageImages(ctx context.Context, images []moodboard.Image) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	accepted := 0
	for _, img := range images {
		if len(w.images) >= moodboard.MaxImages {
			break
		}
		staged := stagedImage{url: img.URL, mime: img.MIMEType, size: len(img.Data)}
		if img.URL == "" {
			id, err := w.blobs.Save(ctx, blobs.Blob{Data: img.Data, ContentType: img.MIMEType}, w.imageTTL)
			if err != nil {
				return accepted, fmt.Errorf("failed to stage image: %w", err)
			}
			staged.id = id
			staged.stored = true
		} else {
			staged.id = uuid.NewString()
		}
		w.images = append(w.images, staged)
		accepted++
	}

	if accepted > 0 {
		// an analysis in flight no longer matches the board; the last
		// outcome and its pieces stay until the next analysis
		w.epoch++
		w.analyzing = false
	}
	if dropped := len(images) - accepted; dropped > 0 {
		log.Ctx(ctx).Debug().Str("workspace_id", w.id).Int("dropped", dropped).Msg("image cap reached, extra images dropped")
	}
	return accepted, nil
}

// RemoveImage unstages an image and releases its stored bytes.
func (w *Workspace) RemoveImage(ctx context.Context, imageID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, img := range w.images {
		if img.id != imageID {
			continue
		}
		if img.stored {
			if err := w.blobs.Delete(ctx, img.id); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("image_id", img.id).Msg("failed to release staged image")
			}
		}
		w.images = append(w.images[:i], w.images[i+1:]...)
		w.invalidateLocked()
		return nil
	}
	return fmt.Errorf("%w: image %s", models.ErrNotFound, imageID)
}

// SetContext stores the designer's notes for the next analysis.
func (w *Workspace) SetContext(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.context = text
}

// loadImagesLocked returns the staged images, pruning any whose bytes have
// expired from the repository.
func (w *Workspace) loadImagesLocked(ctx context.Context) []moodboard.Image {
	out := make([]moodboard.Image, 0, len(w.images))
	kept := w.images[:0]
	for _, img := range w.images {
		if !img.stored {
			out = append(out, moodboard.Image{URL: img.url})
			kept = append(kept, img)
			continue
		}
		blob, ok := w.blobs.Get(ctx, img.id)
		if !ok {
			log.Ctx(ctx).Warn().Str("image_id", img.id).Msg("staged image expired")
			continue
		}
		out = append(out, moodboard.Image{Data: blob.Data, MIMEType: blob.ContentType})
		kept = append(kept, img)
	}
	w.images = kept
	return out
}

// Analyze runs one analysis over the staged images. It is a no-op with no
// images or while another analysis is in flight. Provider failures end in
// NeedsInfo rather than an error.
func (w *Workspace) Analyze(ctx context.Context) Outcome {
	w.mu.Lock()
	if w.analyzing {
		w.mu.Unlock()
		return OutcomeSkipped
	}
	staged := len(w.images)
	images := w.loadImagesLocked(ctx)
	if len(images) == 0 {
		if staged > 0 {
			w.invalidateLocked()
		}
		w.mu.Unlock()
		return OutcomeSkipped
	}
	w.invalidateLocked()
	w.analyzing = true
	epoch := w.epoch
	designerContext := strings.TrimSpace(w.context)
	w.mu.Unlock()

	result, err := w.analyzer.Analyze(ctx, images, designerContext)

	w.mu.Lock()
	defer w.mu.Unlock()

	if epoch != w.epoch {
		log.Ctx(ctx).Info().Str("workspace_id", w.id).Msg("discarding analysis for a superseded moodboard")
		return OutcomeStale
	}
	w.analyzing = false

	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("workspace_id", w.id).Msg("moodboard analysis failed")
		w.needMoreInfo = &moodboard.NeedMoreInfoResult{
			WhatISee:  moodboard.AnalyzeErrorMessage(err),
			Questions: append([]string(nil), analysisErrorQuestions...),
		}
		return OutcomeFailed
	}

	switch r := result.(type) {
	case *moodboard.DesignResult:
		dna := r.DNA
		w.dna = &dna
		w.pieces = make([]*piece, 0, len(r.Pieces))
		for _, desc := range r.Pieces {
			w.pieces = append(w.pieces, &piece{description: desc})
		}
	case *moodboard.NeedMoreInfoResult:
		info := *r
		info.Questions = append([]string(nil), r.Questions...)
		w.needMoreInfo = &info
	}
	return OutcomeApplied
}

func (w *Workspace) pieceLocked(index int) (*piece, error) {
	if index < 0 || index >= len(w.pieces) {
		return nil, fmt.Errorf("%w: no piece at index %d", models.ErrNotFound, index)
	}
	return w.pieces[index], nil
}

// EditPiece replaces a piece description. The generated image, if any, is
// kept until the piece is regenerated.
func (w *Workspace) EditPiece(index int, description string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.pieceLocked(index)
	if err != nil {
		return err
	}
	p.description = description
	return nil
}

func (w *Workspace) SetRefinement(index int, refinement string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.pieceLocked(index)
	if err != nil {
		return err
	}
	p.refinement = refinement
	return nil
}

// AddChip appends a phrase to the piece refinement, comma separated.
func (w *Workspace) AddChip(index int, chip string) error {
	chip = strings.TrimSpace(chip)
	if chip == "" {
		return fmt.Errorf("%w: empty refinement chip", models.ErrInvalidRequest)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.pieceLocked(index)
	if err != nil {
		return err
	}
	if p.refinement == "" {
		p.refinement = chip
	} else {
		p.refinement += ", " + chip
	}
	return nil
}

// EffectivePrompt is the text sent for generation: the description, plus
// the refinement when it is not blank.
func (w *Workspace) EffectivePrompt(index int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.pieceLocked(index)
	if err != nil {
		return "", err
	}
	return p.effectivePrompt(), nil
}

// GeneratePiece generates or regenerates the image for one piece. A piece
// already generating, or with a blank prompt, is skipped. On failure the
// piece keeps its previous state.
func (w *Workspace) GeneratePiece(ctx context.Context, index int) (Outcome, error) {
	w.mu.Lock()
	p, err := w.pieceLocked(index)
	if err != nil {
		w.mu.Unlock()
		return OutcomeSkipped, err
	}
	prompt := p.effectivePrompt()
	if p.inFlight || strings.TrimSpace(prompt) == "" {
		w.mu.Unlock()
		return OutcomeSkipped, nil
	}
	p.inFlight = true
	epoch := w.pieceEpoch
	w.mu.Unlock()

	img, genErr := w.generator.Generate(ctx, prompt)
	if genErr == nil {
		// billed by the provider whether or not the result is still wanted
		w.costs.Add(ctx, img.CostUSD)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	p.inFlight = false

	if genErr != nil {
		log.Ctx(ctx).Error().Err(genErr).Str("workspace_id", w.id).Int("piece", index).Msg("piece image generation failed")
		return OutcomeFailed, genErr
	}
	if epoch != w.pieceEpoch {
		log.Ctx(ctx).Info().Str("workspace_id", w.id).Int("piece", index).Msg("discarding image for a superseded analysis")
		return OutcomeStale, nil
	}
	p.imageURI = img.ImageURI
	return OutcomeApplied, nil
}

// GenerateAllResult lists piece indexes by what happened to them.
type GenerateAllResult struct {
	Generated []int
	Skipped   []int
	Failed    []int
}

// GenerateAll walks the pieces in order, one at a time, skipping those
// that already have an image. Failures are logged and the walk continues.
// It stops early if the analysis is superseded.
func (w *Workspace) GenerateAll(ctx context.Context) GenerateAllResult {
	w.mu.Lock()
	count := len(w.pieces)
	epoch := w.pieceEpoch
	w.mu.Unlock()

	res := GenerateAllResult{Generated: []int{}, Skipped: []int{}, Failed: []int{}}
	for i := 0; i < count; i++ {
		w.mu.Lock()
		if w.pieceEpoch != epoch {
			w.mu.Unlock()
			break
		}
		hasImage := w.pieces[i].imageURI != ""
		w.mu.Unlock()

		if hasImage {
			res.Skipped = append(res.Skipped, i)
			continue
		}

		outcome, _ := w.GeneratePiece(ctx, i)
		switch outcome {
		case OutcomeApplied:
			res.Generated = append(res.Generated, i)
		case OutcomeFailed:
			res.Failed = append(res.Failed, i)
		case OutcomeStale:
			return res
		default:
			res.Skipped = append(res.Skipped, i)
		}
	}
	return res
}

// Close releases every staged image.
func (w *Workspace) Close(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, img := range w.images {
		if img.stored {
			_ = w.blobs.Delete(ctx, img.id)
		}
	}
	w.images = nil
	w.invalidateLocked()
}

func (w *Workspace) Snapshot() models.WorkspaceResponse {
	w.mu.Lock()
	defer w.mu.Unlock()

	resp := models.WorkspaceResponse{
		ID:      w.id,
		State:   string(w.stateLocked()),
		Images:  make([]models.StagedImageResponse, 0, len(w.images)),
		Context: w.context,
		Pieces:  make([]models.PieceResponse, 0, len(w.pieces)),
		Chips:   Chips(),
	}
	if w.costs != nil {
		resp.TotalCostUSD = w.costs.Total()
	}
	for _, img := range w.images {
		resp.Images = append(resp.Images, models.StagedImageResponse{
			ID:       img.id,
			MIMEType: img.mime,
			Size:     img.size,
			URL:      img.url,
		})
	}
	if w.dna != nil {
		resp.DNA = &models.DNAResponse{Lines: w.dna.Lines, Textures: w.dna.Textures, Mood: w.dna.Mood}
	}
	if w.needMoreInfo != nil {
		resp.NeedMoreInfo = &models.NeedMoreInfoResponse{
			WhatISee:  w.needMoreInfo.WhatISee,
			Questions: append([]string{}, w.needMoreInfo.Questions...),
		}
	}
	for i, p := range w.pieces {
		resp.Pieces = append(resp.Pieces, models.PieceResponse{
			Index:           i,
			Description:     p.description,
			Refinement:      p.refinement,
			EffectivePrompt: p.effectivePrompt(),
			ImageURL:        p.imageURI,
			State:           string(p.state()),
			InFlight:        p.inFlight,
		})
	}
	return resp
}
