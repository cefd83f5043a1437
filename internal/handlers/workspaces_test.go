package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/blobs"
	"nicole-studio/internal/costs"
	"nicole-studio/internal/handlers"
	"nicole-studio/internal/models"
	"nicole-studio/internal/moodboard"
	"nicole-studio/internal/workspace"
)

type workspaceFixture struct {
	router    *gin.Engine
	analyzer  *fakeAnalyzer
	generator *fakeGenerator
	costs     *costs.Accumulator
}

func newWorkspaceFixture() *workspaceFixture {
	f := &workspaceFixture{
		analyzer: &fakeAnalyzer{result: &moodboard.DesignResult{
			DNA:    moodboard.DNA{Lines: "l", Textures: "t", Mood: "m"},
			Pieces: []string{"Pendiente", "Collar", "Anillo"},
		}},
		generator: &fakeGenerator{},
		costs:     newCosts(),
	}
	manager := workspace.NewManager(f.analyzer, f.generator, f.costs, blobs.NewMemoryRepository(nil), time.Hour, nil)
	h := handlers.NewWorkspacesHandler(manager)

	f.router = gin.New()
	ws := f.router.Group("/api/workspaces")
	ws.POST("", h.CreateWorkspace)
	ws.GET("/:id", h.GetWorkspace)
	ws.DELETE("/:id", h.DeleteWorkspace)
	ws.POST("/:id/images", h.StageImages)
	ws.DELETE("/:id/images/:image_id", h.RemoveImage)
	ws.PUT("/:id/context", h.SetContext)
	ws.POST("/:id/analyze", h.Analyze)
	ws.PUT("/:id/pieces/:index", h.EditPiece)
	ws.PUT("/:id/pieces/:index/refinement", h.SetRefinement)
	ws.POST("/:id/pieces/:index/chips", h.AddChip)
	ws.POST("/:id/pieces/:index/generate", h.GeneratePiece)
	ws.POST("/:id/generate-all", h.GenerateAll)
	return f
}

func (f *workspaceFixture) create(t *testing.T) string {
	t.Helper()
	w := doJSON(t, f.router, http.MethodPost, "/api/workspaces", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[models.WorkspaceResponse](t, w)
	assert.Equal(t, string(workspace.StateEmpty), resp.State)
	assert.Len(t, resp.Chips, 6)
	return resp.ID
}

func TestWorkspace_Flow(t *testing.T) {
	f := newWorkspaceFixture()
	id := f.create(t)
	base := "/api/workspaces/" + id

	w := doJSON(t, f.router, http.MethodPost, base+"/images", models.StageImagesRequest{
		Images: []string{pngDataURI, pngDataURI, pngDataURI, pngDataURI},
	})
	require.Equal(t, http.StatusOK, w.Code)
	ws := decode[models.WorkspaceResponse](t, w)
	assert.Len(t, ws.Images, 3)
	assert.Equal(t, string(workspace.StateImagesStaged), ws.State)

	w = doJSON(t, f.router, http.MethodPut, base+"/context", models.SetContextRequest{Context: "novias"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, f.router, http.MethodPost, base+"/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ws = decode[models.WorkspaceResponse](t, w)
	assert.Equal(t, string(workspace.StateAnalyzed), ws.State)
	require.Len(t, ws.Pieces, 3)
	assert.Equal(t, "novias", f.analyzer.ctx)

	w = doJSON(t, f.router, http.MethodPost, base+"/pieces/0/chips", models.ChipRequest{Chip: "Más minimal"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, f.router, http.MethodPost, base+"/pieces/0/chips", models.ChipRequest{Chip: "Fondo gris"})
	require.Equal(t, http.StatusOK, w.Code)
	ws = decode[models.WorkspaceResponse](t, w)
	assert.Equal(t, "Pendiente. Refinamiento: Más minimal, Fondo gris", ws.Pieces[0].EffectivePrompt)

	w = doJSON(t, f.router, http.MethodPost, base+"/pieces/0/generate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ws = decode[models.WorkspaceResponse](t, w)
	assert.Equal(t, "data:image/png;base64,AAAA", ws.Pieces[0].ImageURL)
	assert.Equal(t, string(workspace.PieceHasImage), ws.Pieces[0].State)
	assert.Equal(t, []string{"Pendiente. Refinamiento: Más minimal, Fondo gris"}, f.generator.prompts)

	w = doJSON(t, f.router, http.MethodPost, base+"/generate-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[models.GenerateAllResponse](t, w)
	assert.Equal(t, []int{1, 2}, all.Generated)
	assert.Equal(t, []int{0}, all.Skipped)
	assert.Empty(t, all.Failed)
	assert.InDelta(t, 0.12, all.Workspace.TotalCostUSD, 1e-9)

	w = doJSON(t, f.router, http.MethodDelete, base+"/images/"+ws.Images[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ws = decode[models.WorkspaceResponse](t, w)
	assert.Equal(t, string(workspace.StateImagesStaged), ws.State)
	assert.Empty(t, ws.Pieces)

	w = doJSON(t, f.router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, f.router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspace_EditPieceAndRefinement(t *testing.T) {
	f := newWorkspaceFixture()
	id := f.create(t)
	base := "/api/workspaces/" + id
	doJSON(t, f.router, http.MethodPost, base+"/images", models.StageImagesRequest{Images: []string{pngDataURI}})
	doJSON(t, f.router, http.MethodPost, base+"/analyze", nil)

	w := doJSON(t, f.router, http.MethodPut, base+"/pieces/1", models.EditPieceRequest{Description: "Collar corto"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, f.router, http.MethodPut, base+"/pieces/1/refinement", models.RefinementRequest{Refinement: "con cierre dorado"})
	require.Equal(t, http.StatusOK, w.Code)

	ws := decode[models.WorkspaceResponse](t, w)
	assert.Equal(t, "Collar corto. Refinamiento: con cierre dorado", ws.Pieces[1].EffectivePrompt)

	w = doJSON(t, f.router, http.MethodPut, base+"/pieces/9", models.EditPieceRequest{Description: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, f.router, http.MethodPut, base+"/pieces/abc", models.EditPieceRequest{Description: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkspace_GenerateFailure(t *testing.T) {
	f := newWorkspaceFixture()
	id := f.create(t)
	base := "/api/workspaces/" + id
	doJSON(t, f.router, http.MethodPost, base+"/images", models.StageImagesRequest{Images: []string{pngDataURI}})
	doJSON(t, f.router, http.MethodPost, base+"/analyze", nil)

	f.generator.err = fmt.Errorf("%w: 500", models.ErrUpstream)
	w := doJSON(t, f.router, http.MethodPost, base+"/pieces/2/generate", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, moodboard.MsgGenerateUpstream, decode[models.ErrorResponse](t, w).Error)

	w = doJSON(t, f.router, http.MethodPost, base+"/pieces/5/generate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, f.costs.Total())
}

func TestWorkspace_InvalidImages(t *testing.T) {
	f := newWorkspaceFixture()
	id := f.create(t)

	w := doJSON(t, f.router, http.MethodPost, "/api/workspaces/"+id+"/images", models.StageImagesRequest{Images: []string{"not an image"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, f.router, http.MethodPost, "/api/workspaces/"+id+"/images", models.StageImagesRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, f.router, http.MethodPost, "/api/workspaces/missing/analyze", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
