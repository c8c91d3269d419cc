package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/grantlyhq/grantly/backend/internal/middleware"
	"github.com/grantlyhq/grantly/backend/internal/services"
	"github.com/grantlyhq/grantly/backend/internal/services/idp"
	"github.com/grantlyhq/grantly/backend/pkg/logger"
	"github.com/grantlyhq/grantly/backend/pkg/response"
)

// UserHandler serves the authenticated caller's own profile, proxied from
// the identity provider.
type UserHandler struct {
	idpClient   *idp.Client
	userService *services.UserService
}

func NewUserHandler(db *gorm.DB, idpClient *idp.Client) *UserHandler {
	return &UserHandler{
		idpClient:   idpClient,
		userService: services.NewUserService(db),
	}
}

type userProfile struct {
	*idp.User
	Roles []idp.Role `json:"roles"`
}

// Get returns the caller's profile and roles.
// GET /user
func (h *UserHandler) Get(c *gin.Context) {
	subject := middleware.GetSubject(c)
	ctx := c.Request.Context()

	user, err := h.idpClient.GetUser(ctx, subject)
	if err != nil {
		respondUpstream(c, err)
		return
	}

	roles, err := h.idpClient.GetUserRoles(ctx, subject)
	if err != nil {
		respondUpstream(c, err)
		return
	}
	if roles == nil {
		roles = []idp.Role{}
	}

	response.Success(c, userProfile{User: user, Roles: roles})
}

// Update patches the caller's profile at the identity provider and keeps
// the local linkage record in sync. The response carries the same merged
// profile-plus-roles shape as Get.
// PATCH /user
func (h *UserHandler) Update(c *gin.Context) {
	var patch idp.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subject := middleware.GetSubject(c)
	ctx := c.Request.Context()

	user, err := h.idpClient.UpdateUser(ctx, subject, &patch)
	if err != nil {
		respondUpstream(c, err)
		return
	}

	if user.Email != "" {
		if err := h.userService.UpsertEmail(user.Email); err != nil {
			logger.Errorf("[Users] Failed to upsert local record for %s: %v", subject, err)
		}
	}

	roles, err := h.idpClient.GetUserRoles(ctx, subject)
	if err != nil {
		respondUpstream(c, err)
		return
	}
	if roles == nil {
		roles = []idp.Role{}
	}

	response.Success(c, userProfile{User: user, Roles: roles})
}

// respondUpstream relays an identity provider failure, preserving its
// status code when it returned one.
func respondUpstream(c *gin.Context, err error) {
	var apiErr *idp.APIError
	if errors.As(err, &apiErr) {
		response.Upstream(c, apiErr.StatusCode, apiErr.Body)
		return
	}
	response.ServerError(c, err.Error())
}
