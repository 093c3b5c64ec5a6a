package imagecodec

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"golang.org/x/exp/slog"
)

const uploadTimeout = 60 * time.Second

// posterTransformation shrinks uploads before they are stored
const posterTransformation = "c_limit,w_1280,h_1280/q_auto:eco"

// CloudinaryCodec uploads images to Cloudinary and stores their secure URL
type CloudinaryCodec struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryCodec creates a codec from account credentials
func NewCloudinaryCodec(cloudName, apiKey, apiSecret string) (*CloudinaryCodec, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryCodec{cld: cld}, nil
}

// Encode uploads raw and returns its URL. An upload whose stored size is
// still above opts.MaxBytes is deleted again and rejected.
func (c *CloudinaryCodec) Encode(ctx context.Context, raw []byte, opts Options) (string, error) {
	if _, err := contentType(raw); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(raw), uploader.UploadParams{
		Folder:         opts.Folder,
		Transformation: posterTransformation,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}

	if opts.MaxBytes > 0 && resp.Bytes > opts.MaxBytes {
		if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: resp.PublicID}); err != nil {
			slog.Warn("Failed to delete oversized upload", "publicID", resp.PublicID, "error", err)
		}
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, resp.Bytes, opts.MaxBytes)
	}
	return resp.SecureURL, nil
}
