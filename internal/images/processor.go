// Package images validates and normalizes uploaded profile pictures.
// Uploads are sniffed rather than trusted: the declared content type
// is ignored in favor of the actual bytes, and everything is re-encoded
// to JPEG so no foreign file format ever reaches storage.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/talentsift/auth-service/internal/utils"
)

const (
	// MaxUploadBytes caps the raw upload size.
	MaxUploadBytes = 5 << 20

	maxDimension = 4096
	jpegQuality  = 85
)

// Processor turns an untrusted upload into a normalized JPEG.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Normalize verifies the upload is a real JPEG or PNG within dimension
// bounds and re-encodes it as JPEG. Returns ErrInvalidImage for
// anything that fails inspection.
func (p *Processor) Normalize(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: image must be between 1 byte and %d bytes", utils.ErrInvalidImage, MaxUploadBytes)
	}

	sniffed := http.DetectContentType(data)
	if sniffed != "image/jpeg" && sniffed != "image/png" {
		return nil, fmt.Errorf("%w: unsupported content type %s", utils.ErrInvalidImage, sniffed)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not a decodable image", utils.ErrInvalidImage)
	}
	if format != "jpeg" && format != "png" {
		return nil, fmt.Errorf("%w: unsupported format %s", utils.ErrInvalidImage, format)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		return nil, fmt.Errorf("%w: image exceeds %dpx in a dimension", utils.ErrInvalidImage, maxDimension)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("re-encoding image: %w", err)
	}
	return out.Bytes(), nil
}
