package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HealthURL returns the companion server's health endpoint for base.
func HealthURL(base string) string {
	return strings.TrimRight(base, "/") + "/health"
}

// PingURL issues a short GET against url and reports non-2xx as an error.
func PingURL(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := (&http.Client{Timeout: 2 * time.Second}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}

// ServerStatus maps a ping result onto the labels IconForStatus understands.
func ServerStatus(ctx context.Context, base string) string {
	if err := PingURL(ctx, HealthURL(base)); err != nil {
		LogDebug(fmt.Sprintf("health check %s failed: %v", base, err))
		return "offline"
	}
	return "online"
}
