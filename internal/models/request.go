package models

type ChatRequest struct {
	Message string `json:"message" example:"¿Qué pendiente combina con un collar de perlas largo?"`
	// Model is a registry id; unknown or empty ids resolve to the default model.
	Model string `json:"model,omitempty" example:"google/gemini-2.0-flash-001"`
}

type AnalyzeRequest struct {
	// Images are data URIs or http(s) URLs, at most 3.
	Images  []string `json:"images"`
	Context string   `json:"context,omitempty"`
}

type GenerateImageRequest struct {
	Piece string `json:"piece" example:"Anillo con perla, minimalista"`
}

type CreateMessageRequest struct {
	Content string   `json:"content"`
	Model   string   `json:"model,omitempty"`
	FileIDs []string `json:"fileIds,omitempty"`
}

type StageImagesRequest struct {
	Images []string `json:"images"`
}

type SetContextRequest struct {
	Context string `json:"context"`
}

type EditPieceRequest struct {
	Description string `json:"description"`
}

type RefinementRequest struct {
	Refinement string `json:"refinement"`
}

type ChipRequest struct {
	Chip string `json:"chip" example:"Más minimal"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
