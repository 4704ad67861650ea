package validator

import (
	"github.com/nao1215/mediclaim/internal/config"
	"github.com/nao1215/mediclaim/internal/model"
)

// allowedTypes are the declared media types the analysis service accepts.
var allowedTypes = map[model.MediaType]bool{
	model.MediaTypePDF:  true,
	model.MediaTypeJPEG: true,
	model.MediaTypePNG:  true,
}

// Validate checks a document before it is submitted.
// It returns nil or an *model.AnalysisError of kind InvalidType or TooLarge.
// The type is checked first, so a file failing both reports InvalidType.
func Validate(doc *model.Document) error {
	if !Allowed(doc.MediaType) {
		return model.NewInvalidType(doc.MediaType)
	}
	if doc.Size > config.MaxFileSize {
		return model.NewTooLarge(doc.Size, config.MaxFileSize)
	}
	return nil
}

// Allowed reports whether mediaType is one of the accepted declared types.
func Allowed(mediaType model.MediaType) bool {
	return allowedTypes[mediaType]
}
