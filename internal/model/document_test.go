package model

import (
	"os"
	"path/filepath"
	"testing"
)

// TestMediaTypeFromName tests extension based type declaration.
func TestMediaTypeFromName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		expected MediaType
	}{
		{"discharge.pdf", MediaTypePDF},
		{"SCAN.PDF", MediaTypePDF},
		{"page1.jpg", MediaTypeJPEG},
		{"page1.jpeg", MediaTypeJPEG},
		{"page1.png", MediaTypePNG},
		{"setup.exe", MediaTypeUnknown},
		{"notes.txt", MediaTypeUnknown},
		{"no-extension", MediaTypeUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := MediaTypeFromName(tc.name); got != tc.expected {
				t.Errorf("MediaTypeFromName(%q) = %q, want %q", tc.name, got, tc.expected)
			}
		})
	}
}

// TestLoadDocument tests reading a document from disk.
func TestLoadDocument(t *testing.T) {
	t.Parallel()

	t.Run("reads content and declares the type from the extension", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "discharge.pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.7\n"), 0600); err != nil {
			t.Fatalf("failed to write test document: %v", err)
		}

		doc, err := LoadDocument(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Name != "discharge.pdf" {
			t.Errorf("Name = %q", doc.Name)
		}
		if doc.MediaType != MediaTypePDF {
			t.Errorf("MediaType = %q", doc.MediaType)
		}
		if doc.Size != 9 {
			t.Errorf("Size = %d, want 9", doc.Size)
		}
	})

	t.Run("content is not sniffed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "actually-a-pdf.png")
		if err := os.WriteFile(path, []byte("%PDF-1.7\n"), 0600); err != nil {
			t.Fatalf("failed to write test document: %v", err)
		}

		doc, err := LoadDocument(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.MediaType != MediaTypePNG {
			t.Errorf("expected the declared PNG type, got %q", doc.MediaType)
		}
	})

	t.Run("missing file returns an error", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadDocument(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
			t.Error("expected error")
		}
	})
}

// TestDocumentFingerprint tests the SHA3-256 digest.
func TestDocumentFingerprint(t *testing.T) {
	t.Parallel()

	doc := NewDocument("empty.pdf", MediaTypePDF, nil)

	// SHA3-256 of the empty input.
	const want = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := doc.Fingerprint(); got != want {
		t.Errorf("Fingerprint() = %s, want %s", got, want)
	}
	if got := doc.ShortFingerprint(); got != want[:12] {
		t.Errorf("ShortFingerprint() = %s", got)
	}
	if doc.Size != 0 {
		t.Errorf("Size = %d, want 0", doc.Size)
	}
}
