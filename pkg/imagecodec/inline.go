package imagecodec

import (
	"context"
	"encoding/base64"
	"fmt"
)

// InlineCodec stores images as base64 data URLs on the record itself
type InlineCodec struct{}

// NewInlineCodec creates an InlineCodec
func NewInlineCodec() *InlineCodec { return &InlineCodec{} }

// Encode returns raw as a data URL
func (InlineCodec) Encode(_ context.Context, raw []byte, opts Options) (string, error) {
	ct, err := contentType(raw)
	if err != nil {
		return "", err
	}
	payload := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(raw)
	if opts.MaxBytes > 0 && len(payload) > opts.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(payload), opts.MaxBytes)
	}
	return payload, nil
}
