package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/grantlyhq/grantly/backend/internal/middleware"
	"github.com/grantlyhq/grantly/backend/internal/services"
	"github.com/grantlyhq/grantly/backend/pkg/response"
)

type FavoriteHandler struct {
	favoriteService *services.FavoriteService
}

func NewFavoriteHandler(db *gorm.DB) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: services.NewFavoriteService(db),
	}
}

// List returns the caller's favorites with their grants.
// GET /api/favorites
func (h *FavoriteHandler) List(c *gin.Context) {
	subject := middleware.GetSubject(c)

	favorites, err := h.favoriteService.ListBySubject(subject)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, favorites)
}

// Create favorites a grant for the caller.
// POST /api/favorites
func (h *FavoriteHandler) Create(c *gin.Context) {
	var req services.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	subject := middleware.GetSubject(c)
	favorite, err := h.favoriteService.Create(subject, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "grant not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, favorite)
}

// Delete removes one of the caller's favorites. Another user's favorite is
// indistinguishable from a missing one.
// DELETE /api/favorites/:id
func (h *FavoriteHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid favorite id")
		return
	}

	subject := middleware.GetSubject(c)
	if err := h.favoriteService.Delete(uint(id), subject); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "favorite not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"deleted": id})
}
