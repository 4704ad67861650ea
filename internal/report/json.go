package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/mediclaim/internal/model"
)

// JSONWriter outputs results in JSON format for tool integration.
// The result is written in the same shape the analysis service returns,
// after normalization.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result as JSON.
func (w *JSONWriter) Write(result *model.AnalysisResult) (int, error) {
	return w.writeJSON(result)
}

// WriteFailure outputs {"error": {...}}.
func (w *JSONWriter) WriteFailure(failure *model.AnalysisError) (int, error) {
	return w.writeJSON(failureEnvelope{Error: newJSONFailure(failure)})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONFailure is the JSON form of a failed analysis.
type JSONFailure struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

func newJSONFailure(err *model.AnalysisError) *JSONFailure {
	return &JSONFailure{
		Kind:       err.Kind.String(),
		Message:    err.Message(),
		StatusCode: err.StatusCode,
	}
}

type failureEnvelope struct {
	Error *JSONFailure `json:"error"`
}

// JSONDocument is the JSON form of a Source.
type JSONDocument struct {
	Name        string `json:"name"`
	MediaType   string `json:"media_type"`
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// JSONReport wraps a result or failure with run metadata.
// Exactly one of Result and Error is set.
type JSONReport struct {
	Version  string                `json:"version"`
	Document *JSONDocument         `json:"document,omitempty"`
	Result   *model.AnalysisResult `json:"result,omitempty"`
	Error    *JSONFailure          `json:"error,omitempty"`
}

// FullJSONWriter outputs results with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for wrapped reports.
func NewFullJSONWriter(output io.Writer, version string, source Source, opts ...JSONWriterOption) *FullJSONWriter {
	w := &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
	w.source = source
	return w
}

// Write outputs the wrapped result.
func (w *FullJSONWriter) Write(result *model.AnalysisResult) (int, error) {
	return w.writeJSON(JSONReport{
		Version:  w.version,
		Document: w.document(),
		Result:   result,
	})
}

// WriteFailure outputs the wrapped failure.
func (w *FullJSONWriter) WriteFailure(failure *model.AnalysisError) (int, error) {
	return w.writeJSON(JSONReport{
		Version:  w.version,
		Document: w.document(),
		Error:    newJSONFailure(failure),
	})
}

func (w *FullJSONWriter) document() *JSONDocument {
	if w.source.IsZero() {
		return nil
	}
	return &JSONDocument{
		Name:        w.source.Name,
		MediaType:   string(w.source.MediaType),
		Size:        w.source.Size,
		Fingerprint: w.source.Fingerprint,
	}
}
