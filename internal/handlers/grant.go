package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/grantlyhq/grantly/backend/internal/services"
	"github.com/grantlyhq/grantly/backend/pkg/logger"
	"github.com/grantlyhq/grantly/backend/pkg/response"
)

type GrantHandler struct {
	grantService   *services.GrantService
	requestService *services.RequestService
	queue          services.TaskQueue
}

func NewGrantHandler(db *gorm.DB, queue services.TaskQueue) *GrantHandler {
	return &GrantHandler{
		grantService:   services.NewGrantService(db),
		requestService: services.NewRequestService(db),
		queue:          queue,
	}
}

// List returns the grant catalog, optionally filtered.
// GET /api/grants
func (h *GrantHandler) List(c *gin.Context) {
	var req services.GrantListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	grants, err := h.grantService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, grants)
}

// GetByID returns a grant by ID
// GET /api/grants/:id
func (h *GrantHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid grant id")
		return
	}

	grant, err := h.grantService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "grant not found")
		return
	}

	response.Success(c, grant)
}

// Update edits the permitted fields of a grant.
// PATCH /api/admin/grants/:id
func (h *GrantHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid grant id")
		return
	}

	var req services.UpdateGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	grant, err := h.grantService.Update(uint(id), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "grant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, grant)
}

// Delete removes a grant; dependent requests and favorites cascade.
// DELETE /api/admin/grants/:id
func (h *GrantHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid grant id")
		return
	}

	if err := h.grantService.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "grant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"deleted": id})
}

// CreateRequest files a suggestion against a grant and queues the
// notification email.
// POST /api/grants/:id/requests
func (h *GrantHandler) CreateRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid grant id")
		return
	}

	var req services.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	created, err := h.requestService.Create(uint(id), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "grant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	grant, err := h.grantService.GetByID(uint(id))
	grantName := ""
	if err == nil {
		grantName = grant.CompetitionName
	}

	// Mail delivery is off the critical path; a queue failure is logged,
	// never surfaced to the caller.
	task := &services.NotificationTask{
		RequestID:  created.ID,
		GrantID:    uint(id),
		GrantName:  grantName,
		Subject:    created.Subject,
		Suggestion: created.Suggestion,
	}
	if err := h.queue.Enqueue(task); err != nil {
		logger.Errorf("[Grants] Failed to enqueue notification for request %d: %v", created.ID, err)
	}

	response.Created(c, created)
}

// DeleteRequest resolves (removes) a filed suggestion.
// DELETE /api/admin/requests/:id
func (h *GrantHandler) DeleteRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}

	if err := h.requestService.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "request not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"deleted": id})
}
