package portalsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	loginPath   = "/api/token/"
	refreshPath = "/api/token/refresh/"
)

// Login exchanges credentials for a token pair. It goes through the bare
// HTTP client: the token endpoints are never intercepted.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	payload := map[string]string{
		"username": username,
		"password": password,
	}

	var tokenResp TokenResponse
	if err := c.postJSONBare(ctx, loginPath, payload, &tokenResp); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token. Only
// the access token rotates; the refresh token stays valid until it expires
// server-side.
func (c *SDKClient) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	payload := map[string]string{"refresh": refreshToken}

	var refreshResp struct {
		Access string `json:"access"`
	}
	if err := c.postJSONBare(ctx, refreshPath, payload, &refreshResp); err != nil {
		return "", err
	}
	return refreshResp.Access, nil
}

func (c *SDKClient) postJSONBare(ctx context.Context, path string, payload, target any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, target, http.StatusOK)
}
