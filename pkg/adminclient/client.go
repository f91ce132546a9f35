// Package adminclient is the Go SDK for the Meridian authorization API.
// It persists the issued token through a Store, attaches it together with
// the caller's locale to every request, and clears the stored session the
// moment the server answers 401 so callers never retry a dead token.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLocale sets the Accept-Language value sent with every request.
func WithLocale(locale string) Option {
	return func(c *Client) { c.locale = locale }
}

// WithUnauthorizedHook registers a callback invoked after a 401 response has
// cleared the stored session, before the error is returned.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client talks to the authorization API.
type Client struct {
	baseURL        string
	http           *http.Client
	store          Store
	locale         string
	onUnauthorized func()
}

// New builds a Client. A nil store falls back to an in-memory one.
func New(baseURL string, store Store, opts ...Option) *Client {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLocale changes the Accept-Language value for subsequent requests.
func (c *Client) SetLocale(locale string) {
	c.locale = locale
}

// Login exchanges credentials for a session and persists it.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &session, false); err != nil {
		return nil, err
	}
	if err := c.store.Save(&session); err != nil {
		return nil, fmt.Errorf("adminclient: persist session: %w", err)
	}
	return &session, nil
}

// Register creates an account, receives its first session, and persists it.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &session, false); err != nil {
		return nil, err
	}
	if err := c.store.Save(&session); err != nil {
		return nil, fmt.Errorf("adminclient: persist session: %w", err)
	}
	return &session, nil
}

// Logout revokes the server-side session and clears the store. The store is
// cleared even when the revocation call fails: an unreachable server must not
// keep a dead token on disk. It succeeds when no session is held.
func (c *Client) Logout(ctx context.Context) error {
	session, err := c.store.Load()
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	revokeErr := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
	if err := c.store.Clear(); err != nil {
		return err
	}
	// 401 means the token was already dead; the session is gone either way.
	if revokeErr != nil && !IsAuthentication(revokeErr) {
		return revokeErr
	}
	return nil
}

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns one user by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLanguagePreference changes a user's stored locale.
func (c *Client) UpdateLanguagePreference(ctx context.Context, userID int64, language string) error {
	body := map[string]string{"languagePreference": language}
	return c.do(ctx, http.MethodPatch, "/users/"+strconv.FormatInt(userID, 10)+"/preferences", body, nil, true)
}

// SetUserRole replaces the target user's role assignment. The self-change
// guard runs locally as well so the mistake fails before a request is made.
func (c *Client) SetUserRole(ctx context.Context, userID, roleID int64) (*User, error) {
	if session, err := c.store.Load(); err == nil && session != nil && session.ID == userID {
		return nil, ErrSelfRoleChange
	}
	body := map[string]int64{"roleId": roleID}
	var out User
	if err := c.do(ctx, http.MethodPut, "/users/"+strconv.FormatInt(userID, 10)+"/role", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserEnabled flips a user's enabled flag.
func (c *Client) SetUserEnabled(ctx context.Context, userID int64, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.do(ctx, http.MethodPatch, "/users/"+strconv.FormatInt(userID, 10)+"/status", body, nil, true)
}

// ListRoles returns all roles with their user counts.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.do(ctx, http.MethodGet, "/roles", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRole returns one role by id.
func (c *Client) GetRole(ctx context.Context, id int64) (*Role, error) {
	var out Role
	if err := c.do(ctx, http.MethodGet, "/roles/"+strconv.FormatInt(id, 10), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRole creates a role. Names must match ROLE_* and be unique.
func (c *Client) CreateRole(ctx context.Context, req CreateRoleRequest) (*Role, error) {
	var out Role
	if err := c.do(ctx, http.MethodPost, "/roles", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRole updates a role's description.
func (c *Client) UpdateRole(ctx context.Context, id int64, req UpdateRoleRequest) (*Role, error) {
	var out Role
	if err := c.do(ctx, http.MethodPut, "/roles/"+strconv.FormatInt(id, 10), req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRole removes a role. System roles and roles still assigned to users
// are refused with a ConflictError.
func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/roles/"+strconv.FormatInt(id, 10), nil, nil, true)
}

// RolePrivileges returns the privileges granted to a role.
func (c *Client) RolePrivileges(ctx context.Context, roleID int64) ([]Privilege, error) {
	var out []Privilege
	if err := c.do(ctx, http.MethodGet, "/roles/"+strconv.FormatInt(roleID, 10)+"/privileges", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceRolePrivileges swaps a role's privilege set wholesale and returns
// the updated role. An empty slice strips every privilege from the role.
func (c *Client) ReplaceRolePrivileges(ctx context.Context, roleID int64, privilegeIDs []int64) (*Role, error) {
	if privilegeIDs == nil {
		privilegeIDs = []int64{}
	}
	body := map[string][]int64{"privilegeIds": privilegeIDs}
	var out Role
	if err := c.do(ctx, http.MethodPut, "/roles/"+strconv.FormatInt(roleID, 10)+"/privileges", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddRolePrivilege grants a single privilege to a role.
func (c *Client) AddRolePrivilege(ctx context.Context, roleID, privilegeID int64) error {
	path := "/roles/" + strconv.FormatInt(roleID, 10) + "/privileges/" + strconv.FormatInt(privilegeID, 10)
	return c.do(ctx, http.MethodPost, path, nil, nil, true)
}

// RemoveRolePrivilege revokes a single privilege from a role.
func (c *Client) RemoveRolePrivilege(ctx context.Context, roleID, privilegeID int64) error {
	path := "/roles/" + strconv.FormatInt(roleID, 10) + "/privileges/" + strconv.FormatInt(privilegeID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// ListPrivileges returns all privileges with their role counts.
func (c *Client) ListPrivileges(ctx context.Context) ([]Privilege, error) {
	var out []Privilege
	if err := c.do(ctx, http.MethodGet, "/privileges", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPrivilegesGrouped returns privileges bucketed by category. Privileges
// without a category land under "uncategorized".
func (c *Client) ListPrivilegesGrouped(ctx context.Context) (map[string][]Privilege, error) {
	var out map[string][]Privilege
	if err := c.do(ctx, http.MethodGet, "/privileges?grouped=true", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// PrivilegeCategories returns the distinct non-empty categories.
func (c *Client) PrivilegeCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/privileges/categories", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// PrivilegesByCategory returns the privileges in one category.
func (c *Client) PrivilegesByCategory(ctx context.Context, category string) ([]Privilege, error) {
	var out []Privilege
	if err := c.do(ctx, http.MethodGet, "/privileges/category/"+url.PathEscape(category), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPrivilege returns one privilege by id.
func (c *Client) GetPrivilege(ctx context.Context, id int64) (*Privilege, error) {
	var out Privilege
	if err := c.do(ctx, http.MethodGet, "/privileges/"+strconv.FormatInt(id, 10), nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePrivilege creates a privilege. Names are upper-cased server-side and
// must be unique.
func (c *Client) CreatePrivilege(ctx context.Context, req CreatePrivilegeRequest) (*Privilege, error) {
	var out Privilege
	if err := c.do(ctx, http.MethodPost, "/privileges", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePrivilege updates a privilege's description and category.
func (c *Client) UpdatePrivilege(ctx context.Context, id int64, req UpdatePrivilegeRequest) (*Privilege, error) {
	var out Privilege
	if err := c.do(ctx, http.MethodPut, "/privileges/"+strconv.FormatInt(id, 10), req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePrivilege removes a privilege. Privileges still granted to roles are
// refused with a ConflictError.
func (c *Client) DeletePrivilege(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/privileges/"+strconv.FormatInt(id, 10), nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("adminclient: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("adminclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.locale != "" {
		req.Header.Set("Accept-Language", c.locale)
	}

	if authenticated {
		session, err := c.store.Load()
		if err != nil {
			return fmt.Errorf("adminclient: load session: %w", err)
		}
		if session == nil {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", session.Type+" "+session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("adminclient: decode response: %w", err)
		}
		return nil
	}

	detail := problemDetail(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// The token is dead either way; drop it so the caller falls back to
		// the logged-out path instead of retrying.
		_ = c.store.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &AuthenticationError{Detail: detail}
	case http.StatusBadRequest:
		return &ValidationError{Detail: detail}
	case http.StatusForbidden:
		return &APIError{Status: resp.StatusCode, Detail: detail}
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return &ConflictError{Detail: detail}
	default:
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}
}

func problemDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &problem); err != nil {
		return strings.TrimSpace(string(data))
	}
	if problem.Detail != "" {
		return problem.Detail
	}
	return problem.Title
}
