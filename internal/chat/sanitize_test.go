package chat_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"nicole-studio/internal/chat"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Perla barroca en oro", chat.Sanitize("**Perla barroca** en oro"))
	assert.Equal(t, "uno\n\ndos", chat.Sanitize("uno\n\n\n\n\ndos"))
	assert.Equal(t, "uno\n\ndos", chat.Sanitize("uno\n\ndos"))
	assert.Equal(t, "hola", chat.Sanitize("  hola \n"))
}

func TestSanitize_CapsLength(t *testing.T) {
	long := strings.Repeat("á", 1200)
	out := chat.Sanitize(long)
	assert.Equal(t, 901, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))

	exact := strings.Repeat("a", 900)
	assert.Equal(t, exact, chat.Sanitize(exact))
}
