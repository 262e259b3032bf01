// Package files checks browser uploads before they are relayed to the backend
// and resolves stored file paths to URLs.
package files

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"caradmin/internal/backend"
)

const (
	MaxImageSize      = 10 * 1024 * 1024 // 10 MB
	MaxAttachmentSize = 25 * 1024 * 1024 // 25 MB
)

// ImageTypes are accepted for car photos
var ImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AttachmentTypes are accepted for lead attachments
var AttachmentTypes = map[string]bool{
	"image/jpeg":               true,
	"image/png":                true,
	"image/gif":                true,
	"image/webp":               true,
	"application/pdf":          true,
	"application/zip":          true,
	"text/plain":               true,
	"application/octet-stream": true, // docx, xlsx
}

// Policy limits what an upload may contain
type Policy struct {
	MaxSize int64
	Allowed map[string]bool
}

var (
	Images      = Policy{MaxSize: MaxImageSize, Allowed: ImageTypes}
	Attachments = Policy{MaxSize: MaxAttachmentSize, Allowed: AttachmentTypes}
)

// Read opens a multipart file, checks it against p and returns it ready to
// be relayed upstream.
func Read(fh *multipart.FileHeader, p Policy) (backend.Upload, error) {
	if fh.Size == 0 {
		return backend.Upload{}, ErrEmptyFile
	}
	if p.MaxSize > 0 && fh.Size > p.MaxSize {
		return backend.Upload{}, ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return backend.Upload{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, fh.Size+1))
	if err != nil {
		return backend.Upload{}, fmt.Errorf("failed to read file: %w", err)
	}

	// Detect MIME type from first 512 bytes
	mimeType := http.DetectContentType(data)
	mimeType = strings.Split(mimeType, ";")[0]
	if len(p.Allowed) > 0 && !p.Allowed[mimeType] {
		return backend.Upload{}, ErrInvalidMimeType
	}

	return backend.Upload{Name: fh.Filename, Content: bytes.NewReader(data)}, nil
}

// ReadAll applies Read to every header and stops at the first error.
func ReadAll(headers []*multipart.FileHeader, p Policy) ([]backend.Upload, error) {
	if len(headers) == 0 {
		return nil, ErrNoFiles
	}
	out := make([]backend.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := Read(fh, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		out = append(out, u)
	}
	return out, nil
}
