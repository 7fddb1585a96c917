package oracle

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// LoggingTransport wraps an http.RoundTripper and logs oracle traffic at
// debug level. The Authorization header is redacted.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
	Prefix    string // e.g., "MOCK" or "REAL"
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBodyBytes []byte
	if req.Body != nil {
		var err error
		reqBodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(reqBodyBytes))
	}

	reqHeaders := make(map[string]string, len(req.Header))
	for k, v := range req.Header {
		if strings.EqualFold(k, "Authorization") {
			reqHeaders[k] = redactBearer(strings.Join(v, ", "))
		} else {
			reqHeaders[k] = strings.Join(v, ", ")
		}
	}

	t.logger().Debug("oracle request",
		"prefix", t.Prefix,
		"method", req.Method,
		"url", req.URL.String(),
		"headers", reqHeaders,
		"body", string(reqBodyBytes),
	)

	resp, err := t.transport().RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.logger().Error("oracle request failed",
			"prefix", t.Prefix,
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	//nolint:errcheck
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(respBodyBytes))

	t.logger().Debug("oracle response",
		"prefix", t.Prefix,
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"body", string(respBodyBytes),
	)

	return resp, nil
}

func (t *LoggingTransport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}

func (t *LoggingTransport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// redactBearer keeps the scheme and the first and last 4 characters of the
// credential. Short credentials are fully redacted.
func redactBearer(value string) string {
	scheme, cred, found := strings.Cut(value, " ")
	if !found {
		cred, scheme = value, ""
	}
	redacted := "****"
	if len(cred) >= 12 {
		redacted = cred[:4] + "..." + cred[len(cred)-4:]
	}
	if scheme == "" {
		return redacted
	}
	return scheme + " " + redacted
}
