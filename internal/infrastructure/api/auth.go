package api

import (
	"context"
	"net/http"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	ID          string `json:"id"`
	LastRole    string `json:"lastRole"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Login authenticates and returns the credentials of the account.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.Credentials, error) {
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}

	role := domain.Role(resp.LastRole)
	if !domain.ValidRole(role) {
		role = domain.RoleBuyer
	}
	return &ports.Credentials{
		AccessToken: resp.AccessToken,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		UserID:      resp.ID,
		Role:        role,
	}, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Refresh exchanges the current bearer token for a fresh one.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var resp refreshResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// SwitchRole persists the new active role for the account.
func (c *Client) SwitchRole(ctx context.Context, userID string, role domain.Role) error {
	body := map[string]string{"role": string(role)}
	return c.doJSON(ctx, http.MethodPatch, "/user/switch-role/"+userID, body, nil)
}
