package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// MaxUploadSize caps a single uploaded image.
const MaxUploadSize = 5 << 20

// Upload errors. Both are user-correctable.
var (
	ErrTooLarge = errors.New("image is larger than 5 MiB")
	ErrNotImage = errors.New("file is not a supported image (JPEG, PNG, GIF or WebP)")
)

var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// Stored describes an image written by Processor.Store.
type Stored struct {
	Ref      string
	BlurHash string
	Width    int
	Height   int
}

// Processor validates uploads and writes them to Storage.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{storage: storage, logger: logger}
}

// Storage returns the underlying storage.
func (p *Processor) Storage() *Storage {
	return p.storage
}

// Store reads an upload, checks that it decodes as an image, and saves the
// original bytes. The extension follows the decoded format, never the
// client's filename.
func (p *Processor) Store(ctx context.Context, kind Kind, r io.Reader) (*Stored, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotImage
	}
	ext, ok := extensions[format]
	if !ok {
		return nil, ErrNotImage
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		// The placeholder is optional.
		p.logger.Warn("blurhash failed", "format", format, "error", err)
	}

	ref, err := p.storage.Save(kind, ext, data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	p.logger.Debug("stored image", "ref", ref, "size", len(data), "width", bounds.Dx(), "height", bounds.Dy())

	return &Stored{Ref: ref, BlurHash: hash, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// Delete removes a stored image. Empty refs are ignored.
func (p *Processor) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	return p.storage.Delete(ref)
}
