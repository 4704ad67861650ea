package model

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
)

// MediaType is a declared MIME type.
type MediaType string

// Media types the analysis service accepts.
const (
	MediaTypePDF     MediaType = "application/pdf"
	MediaTypeJPEG    MediaType = "image/jpeg"
	MediaTypePNG     MediaType = "image/png"
	MediaTypeUnknown MediaType = "application/octet-stream"
)

// extensionTypes maps lower-case file extensions to declared media types.
var extensionTypes = map[string]MediaType{
	".pdf":  MediaTypePDF,
	".jpg":  MediaTypeJPEG,
	".jpeg": MediaTypeJPEG,
	".png":  MediaTypePNG,
}

// Document is one file selected for analysis. It lives only for the duration
// of a single session.
type Document struct {
	// Name is the file name sent in the multipart part.
	Name string

	// MediaType is the declared type. The content is never sniffed.
	MediaType MediaType

	// Content is the raw file bytes.
	Content []byte

	// Size is len(Content).
	Size int64
}

// NewDocument creates a Document from in-memory content.
func NewDocument(name string, mediaType MediaType, content []byte) *Document {
	return &Document{
		Name:      name,
		MediaType: mediaType,
		Content:   content,
		Size:      int64(len(content)),
	}
}

// LoadDocument reads path and declares its media type from the extension.
// Unknown extensions are declared as application/octet-stream so that the
// validator, not the loader, decides whether the file is acceptable.
func LoadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user on the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return NewDocument(filepath.Base(path), MediaTypeFromName(path), content), nil
}

// MediaTypeFromName returns the declared media type for a file name.
func MediaTypeFromName(name string) MediaType {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return MediaTypeUnknown
}

// Fingerprint returns the SHA3-256 digest of the content as lower-case hex.
func (d *Document) Fingerprint() string {
	sum := sha3.Sum256(d.Content)
	return hex.EncodeToString(sum[:])
}

// ShortFingerprint returns the first 12 hex characters of Fingerprint.
func (d *Document) ShortFingerprint() string {
	return d.Fingerprint()[:12]
}
