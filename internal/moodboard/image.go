package moodboard

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"nicole-studio/internal/models"
)

// Image is a moodboard image, either inline bytes or a remote URL.
type Image struct {
	Data     []byte
	MIMEType string
	URL      string
}

// Ref renders the image the way the vision endpoint accepts it.
func (i Image) Ref() string {
	if i.URL != "" {
		return i.URL
	}
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// NewInlineImage sniffs the MIME type and rejects non-image payloads.
func NewInlineImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty image", models.ErrInvalidRequest)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("%w: unsupported content type %s", models.ErrInvalidRequest, mime)
	}
	return Image{Data: data, MIMEType: mime}, nil
}

// ParseImageRef accepts "data:image/...;base64,..." URIs and http(s) URLs.
func ParseImageRef(ref string) (Image, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return Image{URL: ref}, nil
	case strings.HasPrefix(ref, "data:image/"):
		header, payload, ok := strings.Cut(ref, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return Image{}, fmt.Errorf("%w: image data URI must be base64", models.ErrInvalidRequest)
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Image{}, fmt.Errorf("%w: invalid base64 image: %v", models.ErrInvalidRequest, err)
		}
		if len(data) == 0 {
			return Image{}, fmt.Errorf("%w: empty image", models.ErrInvalidRequest)
		}
		mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		return Image{Data: data, MIMEType: mime}, nil
	default:
		return Image{}, fmt.Errorf("%w: image must be a data URI or http URL", models.ErrInvalidRequest)
	}
}
