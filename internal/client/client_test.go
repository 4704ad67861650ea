package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/mediclaim/internal/config"
	"github.com/nao1215/mediclaim/internal/model"
)

const okBody = `{
  "clinical_extraction": {"diagnoses": ["Cholelithiasis"], "procedures": ["Laparoscopic cholecystectomy"]},
  "package_recommendation": {"primary_package": {"package_code": "SG027A", "package_name": "Cholecystectomy", "reason": "Matches procedure"}},
  "insurance_justification": {"confidence_score": 0.91, "risk_flags": [], "required_documents": ["Operative notes"]}
}`

// newTestClient returns a Client pointed at srv with a short timeout.
func newTestClient(t *testing.T, baseURL string, mutate ...func(*config.Config)) *Client {
	t.Helper()

	cfg := config.NewConfig()
	cfg.APIURL = baseURL
	cfg.Timeout = 2 * time.Second
	for _, m := range mutate {
		m(cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func testDocument() *model.Document {
	return model.NewDocument("discharge summary.pdf", model.MediaTypePDF, []byte("%PDF-1.7 test"))
}

// TestSubmit_Success tests the request shape and a decoded result.
func TestSubmit_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
			http.Error(w, "unexpected request", http.StatusNotFound)
			return
		}
		switch {
		case r.Header.Get(RequestIDHeader) == "":
			http.Error(w, `{"detail": "missing request id"}`, http.StatusBadRequest)
			return
		case r.Header.Get("User-Agent") != config.DefaultUserAgent:
			http.Error(w, `{"detail": "unexpected user agent"}`, http.StatusBadRequest)
			return
		case r.Header.Get("X-Api-Key") != "gateway-key":
			http.Error(w, `{"detail": "missing gateway key"}`, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"detail": "missing file"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file) //nolint:errcheck // test server
		if header.Filename != "discharge summary.pdf" ||
			header.Header.Get("Content-Type") != "application/pdf" ||
			string(content) != "%PDF-1.7 test" {
			http.Error(w, `{"detail": "unexpected part"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, okBody) //nolint:errcheck // test server
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/", func(cfg *config.Config) {
		cfg.Headers = map[string]string{"X-Api-Key": "gateway-key"}
	})

	var sent atomic.Int32
	result, err := c.Submit(context.Background(), testDocument(), func() { sent.Add(1) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PrimaryPackage().Code != "SG027A" {
		t.Errorf("unexpected primary package %+v", result.PrimaryPackage())
	}
	if result.Confidence().Percent != 91 {
		t.Errorf("unexpected confidence %+v", result.Confidence())
	}
	if !result.AllClear() {
		t.Error("expected AllClear")
	}
	if n := sent.Load(); n != 1 {
		t.Errorf("expected onSent once, got %d", n)
	}
}

// TestSubmit_Classification tests how each failure is classified.
func TestSubmit_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    model.ErrorKind
		wantMessage string
	}{
		{
			name:        "400 with detail is a service rejection shown verbatim",
			status:      http.StatusBadRequest,
			body:        `{"detail": "Invalid file type. Only PDF, JPG, PNG supported."}`,
			wantKind:    model.KindServiceRejected,
			wantMessage: "Invalid file type. Only PDF, JPG, PNG supported.",
		},
		{
			name:        "500 with detail is a service rejection",
			status:      http.StatusInternalServerError,
			body:        `{"detail": "Gemini quota exceeded"}`,
			wantKind:    model.KindServiceRejected,
			wantMessage: "Gemini quota exceeded",
		},
		{
			name:        "500 with plain text is an unknown rejection",
			status:      http.StatusInternalServerError,
			body:        "Internal Server Error",
			wantKind:    model.KindServiceRejectedUnknown,
			wantMessage: model.MessageServiceRejectedUnknown,
		},
		{
			name:        "422 with a detail list is an unknown rejection",
			status:      http.StatusUnprocessableEntity,
			body:        `{"detail": [{"loc": ["body", "file"], "msg": "field required"}]}`,
			wantKind:    model.KindServiceRejectedUnknown,
			wantMessage: model.MessageServiceRejectedUnknown,
		},
		{
			name:        "502 with blank detail is an unknown rejection",
			status:      http.StatusBadGateway,
			body:        `{"detail": "  "}`,
			wantKind:    model.KindServiceRejectedUnknown,
			wantMessage: model.MessageServiceRejectedUnknown,
		},
		{
			name:        "200 with HTML is an unknown rejection",
			status:      http.StatusOK,
			body:        "<html>proxy page</html>",
			wantKind:    model.KindServiceRejectedUnknown,
			wantMessage: model.MessageServiceRejectedUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body) //nolint:errcheck // test server
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Submit(context.Background(), testDocument(), nil)

			var ae *model.AnalysisError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *model.AnalysisError, got %v", err)
			}
			if ae.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", ae.Kind, tt.wantKind)
			}
			if ae.Message() != tt.wantMessage {
				t.Errorf("Message() = %q, want %q", ae.Message(), tt.wantMessage)
			}
			if ae.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", ae.StatusCode, tt.status)
			}
		})
	}

	t.Run("200 with non-object body wraps ErrMalformedResponse", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `["not", "an", "object"]`) //nolint:errcheck // test server
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).Submit(context.Background(), testDocument(), nil)
		if !errors.Is(err, model.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse in chain, got %v", err)
		}
	})
}

// TestSubmit_ResponseSize tests the max_response_size boundary.
func TestSubmit_ResponseSize(t *testing.T) {
	t.Parallel()

	limit := int64(len(okBody))
	withLimit := func(n int64) func(*config.Config) {
		return func(cfg *config.Config) { cfg.MaxResponseSize = n }
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, okBody) //nolint:errcheck // test server
	}))
	defer srv.Close()

	t.Run("body of exactly the limit is decoded", func(t *testing.T) {
		t.Parallel()

		result, err := newTestClient(t, srv.URL, withLimit(limit)).Submit(context.Background(), testDocument(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PrimaryPackage().Code != "SG027A" {
			t.Errorf("unexpected primary package %+v", result.PrimaryPackage())
		}
	})

	t.Run("body over the limit is reported as too large", func(t *testing.T) {
		t.Parallel()

		_, err := newTestClient(t, srv.URL, withLimit(limit-1)).Submit(context.Background(), testDocument(), nil)
		if !errors.Is(err, ErrResponseTooLarge) {
			t.Fatalf("expected ErrResponseTooLarge, got %v", err)
		}
		if !errors.Is(err, model.ErrServiceRejectedUnknown) {
			t.Errorf("expected an unknown rejection, got %v", err)
		}
		if errors.Is(err, model.ErrMalformedResponse) {
			t.Error("oversized body must not be reported as malformed")
		}
	})
}

// TestSubmit_NetworkFailures tests failures where no response arrives.
func TestSubmit_NetworkFailures(t *testing.T) {
	t.Parallel()

	t.Run("refused connection is network unreachable and onSent is not called", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		var sent atomic.Int32
		_, err := newTestClient(t, url).Submit(context.Background(), testDocument(), func() { sent.Add(1) })
		if !errors.Is(err, model.ErrNetworkUnreachable) {
			t.Fatalf("expected ErrNetworkUnreachable, got %v", err)
		}
		if sent.Load() != 0 {
			t.Error("expected onSent not to be called")
		}
	})

	t.Run("timeout is network unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		c := newTestClient(t, srv.URL, func(cfg *config.Config) {
			cfg.Timeout = 50 * time.Millisecond
		})
		_, err := c.Submit(context.Background(), testDocument(), nil)
		if !errors.Is(err, model.ErrNetworkUnreachable) {
			t.Fatalf("expected ErrNetworkUnreachable, got %v", err)
		}
		var ae *model.AnalysisError
		if errors.As(err, &ae) && ae.Message() != model.MessageNetworkUnreachable {
			t.Errorf("unexpected message %q", ae.Message())
		}
	})

	t.Run("cancelled context is network unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, okBody) //nolint:errcheck // test server
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient(t, srv.URL).Submit(ctx, testDocument(), nil)
		if !errors.Is(err, model.ErrNetworkUnreachable) {
			t.Fatalf("expected ErrNetworkUnreachable, got %v", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled in chain, got %v", err)
		}
	})
}

// TestHealth tests GET /health.
func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy service", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/health" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, `{"status": "healthy", "service": "MediClaim AI API"}`) //nolint:errcheck // test server
		}))
		defer srv.Close()

		status, err := newTestClient(t, srv.URL).Health(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.Healthy() || status.Service != "MediClaim AI API" {
			t.Errorf("unexpected status %+v", status)
		}
	})

	t.Run("unreachable service", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newTestClient(t, url).Health(context.Background())
		if !errors.Is(err, model.ErrNetworkUnreachable) {
			t.Errorf("expected ErrNetworkUnreachable, got %v", err)
		}
	})

	t.Run("503 is a rejection", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).Health(context.Background())
		if !errors.Is(err, model.ErrServiceRejectedUnknown) {
			t.Errorf("expected ErrServiceRejectedUnknown, got %v", err)
		}
	})
}

// TestNew tests construction from configuration.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("trailing slash is trimmed from the base URL", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, "http://localhost:8000/")
		if c.BaseURL() != "http://localhost:8000" {
			t.Errorf("BaseURL() = %q", c.BaseURL())
		}
	})

	t.Run("SOCKS5 proxy does not connect at construction", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, "http://localhost:8000", func(cfg *config.Config) {
			cfg.ProxyAddress = "127.0.0.1:1080"
		})
		if c == nil {
			t.Fatal("expected client")
		}
	})

	t.Run("WithHTTPClient replaces the transport", func(t *testing.T) {
		t.Parallel()
		hc := &http.Client{}
		c, err := New(config.NewConfig(), WithHTTPClient(hc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.httpClient != hc {
			t.Error("expected the given HTTP client")
		}
	})
}

// TestHeaderInjectingTransport tests header injection.
func TestHeaderInjectingTransport(t *testing.T) {
	t.Parallel()

	var got http.Header
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = req.Header
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("")), Request: req}, nil
	})

	rt := &headerInjectingTransport{
		base:      base,
		userAgent: "mediclaim-test",
		headers:   map[string]string{"X-Api-Key": "k1", "User-Agent": "override"},
	}

	req := httptest.NewRequest(http.MethodGet, "http://localhost:8000/health", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got.Get("X-Api-Key") != "k1" {
		t.Errorf("expected X-Api-Key, got %q", got.Get("X-Api-Key"))
	}
	if got.Get("User-Agent") != "override" {
		t.Errorf("expected configured headers to win over the user agent, got %q", got.Get("User-Agent"))
	}
	if req.Header.Get("X-Api-Key") != "" {
		t.Error("expected the original request to be left untouched")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// TestExtractDetail tests detail extraction from error bodies.
func TestExtractDetail(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		body     string
		expected string
	}{
		{`{"detail": "Bad scan"}`, "Bad scan"},
		{`{"detail": ""}`, ""},
		{`{"detail": 42}`, ""},
		{`{"error": "x"}`, ""},
		{`not json`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.body, func(t *testing.T) {
			t.Parallel()
			if got := extractDetail([]byte(tc.body)); got != tc.expected {
				t.Errorf("extractDetail(%q) = %q, want %q", tc.body, got, tc.expected)
			}
		})
	}
}

func TestHTMLErrorTitle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		contentType string
		body        string
		expected    string
	}{
		{"gateway page", "text/html; charset=utf-8", "<html><head><title>502 Bad\n  Gateway</title></head><body>nginx</body></html>", "502 Bad Gateway"},
		{"json body", "application/json", `{"detail": "x"}`, ""},
		{"html without title", "text/html", "<p>oops</p>", ""},
		{"missing content type", "", "<title>x</title>", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := htmlErrorTitle(tc.contentType, []byte(tc.body)); got != tc.expected {
				t.Errorf("htmlErrorTitle() = %q, want %q", got, tc.expected)
			}
		})
	}

	t.Run("HTML error page is still an unknown rejection", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html><title>502 Bad Gateway</title></html>") //nolint:errcheck
		}))
		defer srv.Close()

		doc := model.NewDocument("a.pdf", model.MediaTypePDF, []byte("%PDF"))
		_, err := newTestClient(t, srv.URL).Submit(context.Background(), doc, nil)
		if !errors.Is(err, model.ErrServiceRejectedUnknown) {
			t.Errorf("expected ErrServiceRejectedUnknown, got %v", err)
		}
	})
}
