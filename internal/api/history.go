package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fridgechef/backend/internal/service"
)

// HistoryHandler serves the two durable collections.
type HistoryHandler struct {
	workflow *service.Workflow
}

// NewHistoryHandler creates a new HistoryHandler instance.
func NewHistoryHandler(workflow *service.Workflow) *HistoryHandler {
	return &HistoryHandler{workflow: workflow}
}

// RegisterRoutes registers the collection routes.
func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/history", h.GetHistory)
	router.GET("/favorites", h.GetFavorites)
}

// GetHistory returns the history log, most recent first.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": h.workflow.History()})
}

// GetFavorites returns the favorites, most recently favorited first.
func (h *HistoryHandler) GetFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": h.workflow.Favorites()})
}
