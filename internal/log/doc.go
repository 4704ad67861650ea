// Package log provides slog loggers that never write credentials or patient
// identifiers.
//
// SecureHandler wraps any slog.Handler. Attribute values are replaced with
// MaskValue when the key names a credential or a patient identifier
// (authorization, api_key, patient_name, mrn, aadhaar, ...) or when the value
// itself looks like one (bearer tokens, JWTs, Aadhaar numbers, mobile numbers).
// Masking applies in verbose mode too, since debug logs are the ones most often
// attached to support tickets.
//
// # Usage
//
//	logger := log.New(os.Stderr, verbose, jsonFormat)
//	logger.Debug("submitting document",
//	    "document", doc.Name,
//	    "patient_name", name, // written as ***REDACTED***
//	)
package log
