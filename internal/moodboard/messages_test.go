package moodboard_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"nicole-studio/internal/models"
	"nicole-studio/internal/moodboard"
	"nicole-studio/internal/providers"
)

func TestAnalyzeErrorMessage(t *testing.T) {
	assert.Equal(t, moodboard.MsgNoImages, moodboard.AnalyzeErrorMessage(moodboard.ErrNoImages))
	assert.Equal(t, moodboard.MsgTooManyImages, moodboard.AnalyzeErrorMessage(moodboard.ErrTooManyImages))
	assert.Equal(t, moodboard.MsgMissingCredentials, moodboard.AnalyzeErrorMessage(fmt.Errorf("%w: x", models.ErrMissingCredentials)))
	assert.Equal(t, moodboard.MsgAnalyzeUpstream, moodboard.AnalyzeErrorMessage(&providers.StatusError{StatusCode: 429}))
	assert.Equal(t, moodboard.MsgAnalyzeInternal, moodboard.AnalyzeErrorMessage(errors.New("boom")))
}

func TestGenerateErrorMessage(t *testing.T) {
	assert.Equal(t, moodboard.MsgMissingPiece, moodboard.GenerateErrorMessage(fmt.Errorf("%w: empty", models.ErrInvalidRequest)))
	assert.Equal(t, moodboard.MsgGenerateBadResponse, moodboard.GenerateErrorMessage(moodboard.ErrMissingPayload))
	assert.Equal(t, moodboard.MsgGenerateUpstream, moodboard.GenerateErrorMessage(&providers.StatusError{StatusCode: 500}))
	assert.Equal(t, moodboard.MsgMissingCredentials, moodboard.GenerateErrorMessage(fmt.Errorf("%w: x", models.ErrMissingCredentials)))
	assert.Equal(t, moodboard.MsgGenerateInternal, moodboard.GenerateErrorMessage(errors.New("boom")))
}
