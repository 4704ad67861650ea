package config

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultAPIURL is used when neither a flag, the environment, nor the
	// config file supplies a base URL for the analysis service.
	DefaultAPIURL = "http://localhost:8000"

	// EnvAPIURL is the environment variable that overrides the base URL.
	EnvAPIURL = "MEDICLAIM_API_URL"

	// DefaultTimeout bounds a single analysis request. The service runs two
	// model passes per document.
	DefaultTimeout = 120 * time.Second

	// MaxFileSize is the largest document the client will submit (10 MiB).
	// A file of exactly this size is accepted.
	MaxFileSize = 10 * 1024 * 1024

	// DefaultProgressInterval is the tick period of the synthetic progress driver.
	DefaultProgressInterval = 200 * time.Millisecond

	// DefaultProgressStep is how far one tick advances the progress value.
	DefaultProgressStep = 10

	// DefaultProgressCeiling is the highest value synthetic progress may reach.
	// Only a resolved request moves progress to 100.
	DefaultProgressCeiling = 90

	// AppName is the application name used for XDG directory paths.
	AppName = "mediclaim"

	// DefaultUserAgent identifies the client in request logs on the service side.
	DefaultUserAgent = "mediclaim/1.0 (+https://github.com/nao1215/mediclaim)"

	// DefaultMaxResponseSize limits how much of a response body is read.
	DefaultMaxResponseSize = 5 * 1024 * 1024
)

// Report formats accepted by the file-level report_format key.
const (
	ReportFormatText     = "text"
	ReportFormatMarkdown = "markdown"
	ReportFormatJSON     = "json"
)

// Config holds all options for one mediclaim run. It is built from defaults,
// the config file, the environment and CLI flags, in that order of precedence
// (later wins), and then passed explicitly to every component.
type Config struct {
	// APIURL is the base URL of the analysis service, without a trailing slash.
	APIURL string

	// Timeout is the whole-request timeout for the analysis call.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// Headers are extra static headers added to every request
	// (for example an API gateway key).
	Headers map[string]string

	// MaxResponseSize limits how many bytes of a response body are read.
	MaxResponseSize int64

	// ProgressInterval is the synthetic progress tick period.
	ProgressInterval time.Duration

	// ProgressStep is the increment applied per tick.
	ProgressStep int

	// ProgressCeiling caps synthetic progress below 100.
	ProgressCeiling int

	// Verbose enables debug logging.
	Verbose bool

	// JSONLogs switches the log handler to JSON output.
	JSONLogs bool

	// JSONReport renders the result as JSON. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport renders the result as Markdown. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the rendered result to a file instead of stdout.
	ReportFile string

	// MetricsFile, when set, receives a Prometheus textfile with run metrics.
	MetricsFile string

	// SkipPreflight disables the advisory scan-quality checks.
	SkipPreflight bool

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// DocumentPath is the document to analyze.
	DocumentPath string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:           DefaultAPIURL,
		Timeout:          DefaultTimeout,
		UserAgent:        DefaultUserAgent,
		MaxResponseSize:  DefaultMaxResponseSize,
		ProgressInterval: DefaultProgressInterval,
		ProgressStep:     DefaultProgressStep,
		ProgressCeiling:  DefaultProgressCeiling,
	}
}

// ApplyFile copies every value set in the config file onto c.
// Zero values in the file leave the current value untouched.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.APIURL != "" {
		c.APIURL = f.APIURL
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
	if f.ProgressInterval > 0 {
		c.ProgressInterval = f.ProgressInterval
	}
	switch strings.ToLower(f.ReportFormat) {
	case ReportFormatJSON:
		c.JSONReport = true
		c.MarkdownReport = false
	case ReportFormatMarkdown:
		c.MarkdownReport = true
		c.JSONReport = false
	}
	if f.MetricsFile != "" {
		c.MetricsFile = f.MetricsFile
	}
}

// ApplyEnv applies environment overrides. Only the base URL is read from the
// environment.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		c.APIURL = strings.TrimSpace(v)
	}
}

// NormalizedAPIURL returns APIURL without a trailing slash.
func (c *Config) NormalizedAPIURL() string {
	return strings.TrimRight(c.APIURL, "/")
}

// XDGConfigDir returns the XDG config directory for mediclaim.
// On Linux: ~/.config/mediclaim
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGStateDir returns the XDG state directory for mediclaim. It is the
// default home for the metrics textfile.
// On Linux: ~/.local/state/mediclaim
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// Validate checks that the configuration is usable and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.DocumentPath == "" {
		return ErrNoDocument
	}

	if err := validateAPIURL(c.APIURL); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ProgressInterval <= 0 {
		return ErrInvalidProgressInterval
	}

	if c.ProgressStep <= 0 || c.ProgressCeiling <= 0 || c.ProgressCeiling >= 100 {
		return ErrInvalidProgressSettings
	}

	if c.ProxyAddress != "" && !isValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	if c.MaxResponseSize < 0 {
		return ErrInvalidMaxResponseSize
	}

	return nil
}

// ValidateEndpoint checks only the settings needed to reach the service.
// Used by commands that do not submit a document.
func (c *Config) ValidateEndpoint() error {
	if err := validateAPIURL(c.APIURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ProxyAddress != "" && !isValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	return nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidAPIURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidAPIURL
	}
	return nil
}

// isValidProxyAddress checks for a "host:port" address with a numeric port in range.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}
	n := 0
	for _, ch := range port {
		if ch < '0' || ch > '9' {
			return false
		}
		n = n*10 + int(ch-'0')
		if n > 65535 {
			return false
		}
	}
	return n >= 1
}
