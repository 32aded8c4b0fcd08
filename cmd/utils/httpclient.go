package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// HTTPClient is the subset of *http.Client the CLI depends on.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient builds a fresh *http.Client per request with Timeout (0 means none).
type DefaultHTTPClient struct{ Timeout time.Duration }

func (c *DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	client := &http.Client{Timeout: c.Timeout}
	return client.Do(req)
}

var httpClient HTTPClient = &DefaultHTTPClient{Timeout: 60 * time.Second}

// LogBodyContent logs a body (truncated) and returns an equivalent unread body.
func LogBodyContent(body io.ReadCloser, label string) io.ReadCloser {
	if body == nil {
		LogDebug(fmt.Sprintf("  -> %s: <nil>", label))
		return nil
	}

	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		LogDebug(fmt.Sprintf("  -> %s: <error reading: %v>", label, err))
		return io.NopCloser(bytes.NewReader(nil))
	}
	if len(data) == 0 {
		LogDebug(fmt.Sprintf("  -> %s: <empty>", label))
		return io.NopCloser(bytes.NewReader(data))
	}

	const maxLogSize = 1024
	s := string(data)
	if len(s) > maxLogSize {
		s = s[:maxLogSize] + "... (truncated)"
	}
	LogDebug(fmt.Sprintf("  -> %s: %s", label, s))
	return io.NopCloser(bytes.NewReader(data))
}

// VerboseHTTPClient logs each request and response, headers included, to the debug log.
type VerboseHTTPClient struct{ Inner HTTPClient }

func (v *VerboseHTTPClient) Do(req *http.Request) (*http.Response, error) {
	inner := v.Inner
	if inner == nil {
		inner = &DefaultHTTPClient{}
	}
	LogDebug(fmt.Sprintf("HTTP %s %s", req.Method, req.URL.String()))
	LogHeaders("request", req.Header)
	req.Body = LogBodyContent(req.Body, "request body")

	start := time.Now()
	resp, err := inner.Do(req)
	if err != nil {
		LogDebug(fmt.Sprintf("  -> error after %s: %v", time.Since(start).Round(time.Millisecond), err))
		return nil, err
	}
	LogDebug(fmt.Sprintf("  -> %d %s in %s", resp.StatusCode, http.StatusText(resp.StatusCode), time.Since(start).Round(time.Millisecond)))
	LogHeaders("response", resp.Header)
	resp.Body = LogBodyContent(resp.Body, "response body")
	return resp, nil
}

// GetHTTPClient returns the shared logging client.
func GetHTTPClient() HTTPClient {
	return &VerboseHTTPClient{Inner: httpClient}
}

// GetHTTPClientWithTimeout returns a logging client with its own timeout.
func GetHTTPClientWithTimeout(timeout time.Duration) HTTPClient {
	return &VerboseHTTPClient{Inner: &DefaultHTTPClient{Timeout: timeout}}
}

// SetHTTPClientForTest swaps the shared client and returns a func restoring the previous one.
func SetHTTPClientForTest(client HTTPClient) (restore func()) {
	prev := httpClient
	httpClient = client
	return func() { httpClient = prev }
}

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"www-authenticate":    {},
	"authentication":      {},
	"cookie":              {},
	"set-cookie":          {},
	"x-session-id":        {},
	"session-id":          {},
	"x-api-key":           {},
	"x-goog-api-key":      {},
	"api-key":             {},
	"apikey":              {},
	"x-auth-token":        {},
	"x-access-token":      {},
	"x-refresh-token":     {},
	"x-csrf-token":        {},
	"token":               {},
	"bearer":              {},
	"x-forwarded-for":     {},
	"x-real-ip":           {},
}

// LogHeaders writes headers in sorted order, redacting credentials.
func LogHeaders(kind string, hdr http.Header) {
	if len(hdr) == 0 {
		return
	}
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, secret := sensitiveHeaders[strings.ToLower(k)]
		for _, v := range hdr.Values(k) {
			if secret {
				LogDebug(fmt.Sprintf("  %s header: %s: [REDACTED]", kind, k))
			} else {
				LogDebug(fmt.Sprintf("  %s header: %s: %s", kind, k, v))
			}
		}
	}
}

// ParseServerError extracts the "error" field from an error response body.
// structured reports whether the body was JSON at all; a JSON body without a
// usable "error" yields an empty message. Non-string values are shown as JSON.
func ParseServerError(body []byte) (message string, structured bool) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", false
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return "", true
	}
	switch e := obj["error"].(type) {
	case nil:
		return "", true
	case string:
		return e, true
	case bool:
		if !e {
			return "", true
		}
	case float64:
		if e == 0 {
			return "", true
		}
	}
	raw, err := json.Marshal(obj["error"])
	if err != nil {
		return "", true
	}
	return string(raw), true
}
