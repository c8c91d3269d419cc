// Package idp is a client for the identity provider's management API.
// Authentication and role assignment are owned by the provider; this
// backend only proxies user and role operations through it.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grantlyhq/grantly/backend/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// APIError carries the status and body of a failed upstream call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.StatusCode, e.Body)
}

// User is the provider's representation of an account.
type User struct {
	UserID       string                 `json:"user_id"`
	Email        string                 `json:"email"`
	Name         string                 `json:"name,omitempty"`
	GivenName    string                 `json:"given_name,omitempty"`
	FamilyName   string                 `json:"family_name,omitempty"`
	Nickname     string                 `json:"nickname,omitempty"`
	Picture      string                 `json:"picture,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Role is a named permission bundle assignable to users.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UserPatch holds the profile fields the provider accepts on update.
type UserPatch struct {
	GivenName    string                 `json:"given_name,omitempty"`
	FamilyName   string                 `json:"family_name,omitempty"`
	Name         string                 `json:"name,omitempty"`
	Nickname     string                 `json:"nickname,omitempty"`
	Picture      string                 `json:"picture,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a management API client for the configured provider
// domain. When client credentials are present, requests carry a
// machine-to-machine token obtained via the client-credentials grant; the
// oauth2 token source caches the token in memory and refreshes it on expiry.
func NewClient(ctx context.Context, cfg *config.IdPConfig) *Client {
	domain := strings.TrimSuffix(cfg.Domain, "/")
	base := &http.Client{Timeout: 30 * time.Second}

	httpClient := base
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     domain + "/oauth/token",
			EndpointParams: url.Values{
				"audience": {cfg.Audience},
			},
			AuthStyle: oauth2.AuthStyleInParams,
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		httpClient = cc.Client(ctx)
	}

	return &Client{
		baseURL:    domain + "/api/v2",
		httpClient: httpClient,
	}
}

// ListUsers returns all users known to the provider.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a single user by subject id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserRoles returns the roles currently assigned to a user.
func (c *Client) GetUserRoles(ctx context.Context, id string) ([]Role, error) {
	var roles []Role
	if _, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id)+"/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// UpdateUser patches a user's profile fields and returns the updated user.
func (c *Client) UpdateUser(ctx context.Context, id string, patch *UserPatch) (*User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRoles returns all roles defined at the provider.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if _, err := c.do(ctx, http.MethodGet, "/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// AssignRoles adds roles to a user. The upstream status code is returned so
// callers can forward it; re-assigning a held role is accepted upstream.
func (c *Client) AssignRoles(ctx context.Context, id string, roleIDs []string) (int, error) {
	body := map[string][]string{"roles": roleIDs}
	return c.do(ctx, http.MethodPost, "/users/"+url.PathEscape(id)+"/roles", body, nil)
}

// RemoveRoles revokes roles from a user.
func (c *Client) RemoveRoles(ctx context.Context, id string, roleIDs []string) (int, error) {
	body := map[string][]string{"roles": roleIDs}
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id)+"/roles", body, nil)
}

// do executes one management API call. Non-2xx responses become *APIError
// with the upstream status and body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode provider response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
