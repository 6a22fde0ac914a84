package item

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/service/item"
	"github.com/medibook/booking-api/pkg/httputil"
)

// Handler serves the standalone items microservice. Callers are trusted and
// supply owner_id themselves.
type Handler struct {
	service *item.Service
}

func NewHandler(service *item.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req model.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	created, err := h.service.CreateItem(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (h *Handler) ListItems(c *gin.Context) {
	skip, limit := httputil.Pagination(c)

	var ownerID *uuid.UUID
	if raw := c.Query("owner_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid owner_id"})
			return
		}
		ownerID = &parsed
	}

	items, count, err := h.service.ListItems(c.Request.Context(), ownerID, skip, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, items, count)
}

func (h *Handler) GetItem(c *gin.Context) {
	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Item not found"})
		return
	}

	found, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Item not found"})
		return
	}

	var patch model.UpdateItemRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	updated, err := h.service.UpdateItem(c.Request.Context(), id, &patch)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := httputil.UUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Item not found"})
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Item deleted successfully")
}
