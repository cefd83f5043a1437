package models

import "time"

type ChatResponse struct {
	Content      string `json:"content"`
	TokensInput  int    `json:"tokensInput"`
	TokensOutput int    `json:"tokensOutput"`
}

type DNAResponse struct {
	Lines    string `json:"lineas,omitempty"`
	Textures string `json:"texturas,omitempty"`
	Mood     string `json:"energia,omitempty"`
}

// AnalyzeResponse carries exactly one of the two analysis outcomes.
type AnalyzeResponse struct {
	DNA          *DNAResponse `json:"adn,omitempty"`
	Pieces       []string     `json:"pieces,omitempty"`
	NeedMoreInfo bool         `json:"needMoreInfo,omitempty"`
	WhatISee     string       `json:"whatISee,omitempty"`
	Questions    []string     `json:"questions,omitempty"`
}

type GenerateImageResponse struct {
	ImageURL string  `json:"imageUrl"`
	CostUSD  float64 `json:"costUsd"`
}

type CostResponse struct {
	TotalUSD float64 `json:"totalUsd"`
	Display  string  `json:"display"`
}

type ModelResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	Description     string  `json:"description"`
	CostPer1KInput  float64 `json:"costPer1kInput"`
	CostPer1KOutput float64 `json:"costPer1kOutput"`
	SupportsVision  bool    `json:"supportsVision"`
}

type ModelsResponse struct {
	Default string          `json:"default"`
	Models  []ModelResponse `json:"models"`
}

type AttachmentResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	URL       string      `json:"url"`
	Type      string      `json:"type"`
	SizeBytes int64       `json:"sizeBytes,omitempty"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Expiry    ExpiryBadge `json:"expiry"`
}

type ExpiryBadge struct {
	Label string `json:"label"`
	Level string `json:"level"`
}

type FilesResponse struct {
	Files  []AttachmentResponse `json:"files"`
	Errors []string             `json:"errors,omitempty"`
}

type ChatMessage struct {
	ID           string               `json:"id"`
	Role         string               `json:"role"`
	Content      string               `json:"content"`
	Files        []AttachmentResponse `json:"files,omitempty"`
	Provider     string               `json:"provider,omitempty"`
	Model        string               `json:"model,omitempty"`
	TokensInput  int                  `json:"tokensInput,omitempty"`
	TokensOutput int                  `json:"tokensOutput,omitempty"`
	CostUSD      float64              `json:"costUsd,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
}

type ConversationResponse struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ExchangeResponse is one turn of a conversation. Assistant is absent when
// the user only sent attachments.
type ExchangeResponse struct {
	User      ChatMessage  `json:"user"`
	Assistant *ChatMessage `json:"assistant,omitempty"`
}

type PieceResponse struct {
	Index           int    `json:"index"`
	Description     string `json:"description"`
	Refinement      string `json:"refinement,omitempty"`
	EffectivePrompt string `json:"effectivePrompt"`
	ImageURL        string `json:"imageUrl,omitempty"`
	State           string `json:"state"`
	InFlight        bool   `json:"inFlight"`
}

type StagedImageResponse struct {
	ID       string `json:"id"`
	MIMEType string `json:"mimeType,omitempty"`
	Size     int    `json:"size,omitempty"`
	URL      string `json:"url,omitempty"`
}

type WorkspaceResponse struct {
	ID           string                `json:"id"`
	State        string                `json:"state"`
	Images       []StagedImageResponse `json:"images"`
	Context      string                `json:"context,omitempty"`
	DNA          *DNAResponse          `json:"adn,omitempty"`
	Pieces       []PieceResponse       `json:"pieces"`
	NeedMoreInfo *NeedMoreInfoResponse `json:"needMoreInfo,omitempty"`
	Chips        []string              `json:"chips"`
	TotalCostUSD float64               `json:"totalCostUsd"`
}

type NeedMoreInfoResponse struct {
	WhatISee  string   `json:"whatISee"`
	Questions []string `json:"questions"`
}

type GenerateAllResponse struct {
	Workspace WorkspaceResponse `json:"workspace"`
	Generated []int             `json:"generated"`
	Skipped   []int             `json:"skipped"`
	Failed    []int             `json:"failed"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
