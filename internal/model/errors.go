package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an analysis did not produce a result.
// The set is closed: every failure the client surfaces maps to exactly one kind.
type ErrorKind int

const (
	// KindInvalidType means the declared media type is not PDF, JPEG or PNG.
	KindInvalidType ErrorKind = iota + 1

	// KindTooLarge means the document exceeds the upload size limit.
	KindTooLarge

	// KindNetworkUnreachable means no HTTP response was received at all:
	// refused connection, DNS failure, reset, timeout or cancellation.
	KindNetworkUnreachable

	// KindServiceRejected means the service answered non-2xx with a usable detail message.
	KindServiceRejected

	// KindServiceRejectedUnknown means the service failed without a usable message,
	// or answered 2xx with a body that is not a JSON object.
	KindServiceRejectedUnknown
)

// String returns the kind name used in logs and JSON failure output.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidType:
		return "invalid_type"
	case KindTooLarge:
		return "too_large"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindServiceRejected:
		return "service_rejected"
	case KindServiceRejectedUnknown:
		return "service_rejected_unknown"
	default:
		return "unknown"
	}
}

// Sentinels for matching an *AnalysisError by kind with errors.Is.
var (
	ErrInvalidType            = errors.New("invalid document type")
	ErrTooLarge               = errors.New("document too large")
	ErrNetworkUnreachable     = errors.New("analysis service unreachable")
	ErrServiceRejected        = errors.New("analysis service rejected the document")
	ErrServiceRejectedUnknown = errors.New("analysis failed")
)

// Display messages shown to the user for each kind.
const (
	MessageInvalidType            = "Invalid file type. Please upload PDF, JPG, or PNG files only."
	MessageTooLarge               = "File too large. Maximum size is 10MB."
	MessageNetworkUnreachable     = "Unable to connect to server. Please check if the backend is running."
	MessageServiceRejectedUnknown = "Analysis failed. Please try again."
)

// AnalysisError is the single error type produced by validation and submission.
type AnalysisError struct {
	// Kind is the failure class.
	Kind ErrorKind

	// Detail is the service-provided message for KindServiceRejected.
	Detail string

	// StatusCode is the HTTP status when a response was received, else 0.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// NewInvalidType returns a KindInvalidType error for the given declared type.
func NewInvalidType(mediaType MediaType) *AnalysisError {
	return &AnalysisError{Kind: KindInvalidType, Err: fmt.Errorf("declared type %q", mediaType)}
}

// NewTooLarge returns a KindTooLarge error for a document of size bytes.
func NewTooLarge(size, limit int64) *AnalysisError {
	return &AnalysisError{Kind: KindTooLarge, Err: fmt.Errorf("%d bytes exceeds limit of %d", size, limit)}
}

// NewNetworkUnreachable wraps a transport failure.
func NewNetworkUnreachable(err error) *AnalysisError {
	return &AnalysisError{Kind: KindNetworkUnreachable, Err: err}
}

// NewServiceRejected returns the error for a non-2xx response. An empty detail
// yields KindServiceRejectedUnknown.
func NewServiceRejected(statusCode int, detail string) *AnalysisError {
	if detail == "" {
		return &AnalysisError{Kind: KindServiceRejectedUnknown, StatusCode: statusCode}
	}
	return &AnalysisError{Kind: KindServiceRejected, StatusCode: statusCode, Detail: detail}
}

// NewServiceRejectedUnknown wraps any failure that has no user-facing detail.
func NewServiceRejectedUnknown(statusCode int, err error) *AnalysisError {
	return &AnalysisError{Kind: KindServiceRejectedUnknown, StatusCode: statusCode, Err: err}
}

// AsAnalysisError returns err as an *AnalysisError, classifying anything else
// as KindServiceRejectedUnknown. It returns nil for a nil err.
func AsAnalysisError(err error) *AnalysisError {
	if err == nil {
		return nil
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	return NewServiceRejectedUnknown(0, err)
}

// Message returns the text to display for this failure.
func (e *AnalysisError) Message() string {
	switch e.Kind {
	case KindInvalidType:
		return MessageInvalidType
	case KindTooLarge:
		return MessageTooLarge
	case KindNetworkUnreachable:
		return MessageNetworkUnreachable
	case KindServiceRejected:
		return e.Detail
	default:
		return MessageServiceRejectedUnknown
	}
}

// Error implements error. It includes the cause, unlike Message.
func (e *AnalysisError) Error() string {
	msg := e.sentinel().Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *AnalysisError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *AnalysisError) sentinel() error {
	switch e.Kind {
	case KindInvalidType:
		return ErrInvalidType
	case KindTooLarge:
		return ErrTooLarge
	case KindNetworkUnreachable:
		return ErrNetworkUnreachable
	case KindServiceRejected:
		return ErrServiceRejected
	default:
		return ErrServiceRejectedUnknown
	}
}
