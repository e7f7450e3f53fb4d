package portalsdk

import (
	"context"
	"net/http"
)

const profilePath = "/api/profile/"

// ProfileInput carries the fields a user may change on their own account.
type ProfileInput struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Celular   int64  `json:"celular,omitempty"`
}

// GetProfile returns the authenticated user's own account. The route has no
// id: it always resolves to "my profile".
func (c *SDKClient) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, c.url(profilePath), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile replaces the authenticated user's own account.
func (c *SDKClient) UpdateProfile(ctx context.Context, in ProfileInput) (*Profile, error) {
	var profile Profile
	err := c.sendJSON(ctx, http.MethodPut, c.url(profilePath), in, &profile, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// PatchProfile updates only the given fields of the authenticated user's
// own account.
func (c *SDKClient) PatchProfile(ctx context.Context, fields map[string]any) (*Profile, error) {
	var profile Profile
	err := c.sendJSON(ctx, http.MethodPatch, c.url(profilePath), fields, &profile, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
