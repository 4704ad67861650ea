package report

import (
	"io"

	"github.com/nao1215/mediclaim/internal/model"
)

// VerifyReminder closes every rendered result. Extraction is advisory and a
// person signs off on the claim.
const VerifyReminder = "Please verify the extracted information and ensure all required documents are attached before submitting the claim."

// Writer renders analysis outcomes.
type Writer interface {
	// Write renders a successful result.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.AnalysisResult) (int, error)

	// WriteFailure renders a failed analysis.
	WriteFailure(err *model.AnalysisError) (int, error)
}

// Source describes the analyzed document in report headers.
// The zero value means the header is omitted.
type Source struct {
	Name        string
	MediaType   model.MediaType
	Size        int64
	Fingerprint string
}

// NewSource builds a Source from a document.
func NewSource(doc *model.Document) Source {
	if doc == nil {
		return Source{}
	}
	return Source{
		Name:        doc.Name,
		MediaType:   doc.MediaType,
		Size:        doc.Size,
		Fingerprint: doc.ShortFingerprint(),
	}
}

// IsZero reports whether no document is described.
func (s Source) IsZero() bool {
	return s.Name == "" && s.Size == 0
}

// MultiWriter writes to multiple Writers, for example the terminal and a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the result with every writer. Stops on the first error.
func (m *MultiWriter) Write(result *model.AnalysisResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteFailure renders the failure with every writer. Stops on the first error.
func (m *MultiWriter) WriteFailure(failure *model.AnalysisError) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteFailure(failure)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
	source Source
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
