// Package imagecodec turns raw uploaded images into the size-bounded
// payloads stored on event and merchandise records.
package imagecodec

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrImageTooLarge is returned when the encoded payload exceeds Options.MaxBytes
	ErrImageTooLarge = errors.New("encoded image exceeds the size limit")
	// ErrNotAnImage is returned when the upload is not a recognised image type
	ErrNotAnImage = errors.New("upload is not an image")
)

// Options bound one encode call
type Options struct {
	// Folder groups hosted uploads, e.g. "events" or "merchandise"
	Folder string
	// MaxBytes caps the encoded payload; zero means no cap
	MaxBytes int
}

// Codec encodes a raw image into the payload persisted on a record
type Codec interface {
	Encode(ctx context.Context, raw []byte, opts Options) (string, error)
}

// contentType sniffs raw and rejects anything that is not an image
func contentType(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", ErrNotAnImage
	}
	ct := http.DetectContentType(raw)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, ct)
	}
	return ct, nil
}
