package handlers

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/grantlyhq/grantly/backend/internal/config"
	"github.com/grantlyhq/grantly/backend/internal/services/idp"
	"github.com/grantlyhq/grantly/backend/pkg/response"
)

const contextRoleID = "role_id"

// AdminHandler proxies user and role management to the identity provider.
type AdminHandler struct {
	idpClient    *idp.Client
	legacyDemote bool
}

func NewAdminHandler(idpClient *idp.Client, cfg *config.AuthConfig) *AdminHandler {
	return &AdminHandler{
		idpClient:    idpClient,
		legacyDemote: cfg.LegacyDemote,
	}
}

// ListUsers returns all provider accounts.
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.idpClient.ListUsers(c.Request.Context())
	if err != nil {
		respondUpstream(c, err)
		return
	}
	if users == nil {
		users = []idp.User{}
	}
	response.Success(c, users)
}

// GetUser returns a single provider account with its roles.
// GET /api/admin/users/:userId
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID := c.Param("userId")
	ctx := c.Request.Context()

	user, err := h.idpClient.GetUser(ctx, userID)
	if err != nil {
		respondUpstream(c, err)
		return
	}

	roles, err := h.idpClient.GetUserRoles(ctx, userID)
	if err != nil {
		respondUpstream(c, err)
		return
	}
	if roles == nil {
		roles = []idp.Role{}
	}

	response.Success(c, userProfile{User: user, Roles: roles})
}

// ListRoles returns the roles defined at the provider.
// GET /api/admin/roles
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.idpClient.ListRoles(c.Request.Context())
	if err != nil {
		respondUpstream(c, err)
		return
	}
	if roles == nil {
		roles = []idp.Role{}
	}
	response.Success(c, roles)
}

// CheckRoleID rejects role-mutation requests whose body lacks roleId,
// before the handler runs. The body is restored for downstream binding.
func (h *AdminHandler) CheckRoleID() gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		var body struct {
			RoleID string `json:"roleId"`
		}
		if err := json.Unmarshal(bodyBytes, &body); err != nil || body.RoleID == "" {
			response.BadRequest(c, "roleId is required")
			c.Abort()
			return
		}

		c.Set(contextRoleID, body.RoleID)
		c.Next()
	}
}

// CheckUser verifies the target user exists at the provider before a
// role mutation proceeds.
func (h *AdminHandler) CheckUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if _, err := h.idpClient.GetUser(c.Request.Context(), userID); err != nil {
			respondUpstream(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Promote assigns a role to the target user. The upstream status code is
// relayed as-is; re-assigning an already-held role is accepted silently
// by the provider.
// POST /api/admin/moderator/:userId
func (h *AdminHandler) Promote(c *gin.Context) {
	userID := c.Param("userId")
	roleID := c.GetString(contextRoleID)

	status, err := h.idpClient.AssignRoles(c.Request.Context(), userID, []string{roleID})
	if err != nil {
		respondUpstream(c, err)
		return
	}

	c.Status(status)
}

// Demote revokes a role from the target user. With legacy_demote set, it
// reproduces the historical behavior of re-assigning the role instead.
// DELETE /api/admin/moderator/:userId
func (h *AdminHandler) Demote(c *gin.Context) {
	userID := c.Param("userId")
	roleID := c.GetString(contextRoleID)
	ctx := c.Request.Context()

	var (
		status int
		err    error
	)
	if h.legacyDemote {
		status, err = h.idpClient.AssignRoles(ctx, userID, []string{roleID})
	} else {
		status, err = h.idpClient.RemoveRoles(ctx, userID, []string{roleID})
	}
	if err != nil {
		respondUpstream(c, err)
		return
	}

	c.Status(status)
}
