package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// They are sentinels so callers can match them with errors.Is.
var (
	// ErrNoDocument is returned when no document path was given.
	ErrNoDocument = errors.New("no document specified: provide the path of a PDF, JPG or PNG file")

	// ErrInvalidAPIURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidAPIURL = errors.New("invalid API URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProgressInterval is returned when the progress tick period is not positive.
	ErrInvalidProgressInterval = errors.New("invalid progress interval: must be positive")

	// ErrInvalidProgressSettings is returned when the step or ceiling would let
	// synthetic progress stall or reach 100 on its own.
	ErrInvalidProgressSettings = errors.New("invalid progress settings: step must be positive and ceiling within 1-99")

	// ErrInvalidProxyAddress is returned when the proxy is not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidMaxResponseSize is returned when the response size limit is negative.
	ErrInvalidMaxResponseSize = errors.New("invalid max response size: must be non-negative")
)
