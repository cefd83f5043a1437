package moodboard

import (
	"errors"

	"nicole-studio/internal/models"
)

// User-facing texts. Provider error details never reach the designer.
const (
	MsgNoImages            = "Envíame al menos una imagen del moodboard."
	MsgTooManyImages       = "Máximo 3 imágenes por moodboard."
	MsgMissingCredentials  = "OPENAI_API_KEY not set"
	MsgAnalyzeUpstream     = "No pude analizar el moodboard. Revisa la conexión o intenta con otras imágenes."
	MsgAnalyzeInternal     = "Error al analizar el moodboard."
	MsgMissingPiece        = "Falta la descripción de la pieza."
	MsgGenerateUpstream    = "No pude generar la imagen. Intenta de nuevo."
	MsgGenerateBadResponse = "Respuesta inválida del generador."
	MsgGenerateInternal    = "Error al generar la imagen."
)

// AnalyzeErrorMessage maps an Analyze error to the text shown to the user.
func AnalyzeErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoImages):
		return MsgNoImages
	case errors.Is(err, ErrTooManyImages):
		return MsgTooManyImages
	case errors.Is(err, models.ErrMissingCredentials):
		return MsgMissingCredentials
	case errors.Is(err, models.ErrUpstream):
		return MsgAnalyzeUpstream
	default:
		return MsgAnalyzeInternal
	}
}

// GenerateErrorMessage maps a Generate error to the text shown to the user.
func GenerateErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return MsgMissingPiece
	case errors.Is(err, models.ErrMissingCredentials):
		return MsgMissingCredentials
	case errors.Is(err, ErrMissingPayload):
		return MsgGenerateBadResponse
	case errors.Is(err, models.ErrUpstream):
		return MsgGenerateUpstream
	default:
		return MsgGenerateInternal
	}
}
