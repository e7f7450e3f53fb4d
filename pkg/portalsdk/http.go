package portalsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// doAuth performs an authenticated request against an absolute URL. rawURL
// is absolute because pagination follows the envelope's next/previous links
// directly.
func (c *SDKClient) doAuth(
	ctx context.Context,
	method, rawURL string,
	body io.Reader,
	contentType string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.authClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// getJSON fetches rawURL (with optional query parameters) and decodes the
// response into target.
func (c *SDKClient) getJSON(ctx context.Context, rawURL string, query url.Values, target any) error {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	resp, err := c.doAuth(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

// sendJSON sends payload as a JSON body and decodes the response into
// target (which may be nil when the caller only cares about the status).
func (c *SDKClient) sendJSON(
	ctx context.Context,
	method, rawURL string,
	payload any,
	target any,
	expectedStatus int,
) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := c.doAuth(ctx, method, rawURL, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

// delete issues a DELETE and expects 204 No Content.
func (c *SDKClient) delete(ctx context.Context, rawURL string) error {
	resp, err := c.doAuth(ctx, http.MethodDelete, rawURL, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp.StatusCode, body)
	}
	return nil
}

// decodeJSON decodes a JSON response into target, turning any unexpected
// status into a typed *APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, body)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
