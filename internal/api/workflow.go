package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fridgechef/backend/internal/model"
	"github.com/fridgechef/backend/internal/service"
)

// maxUploadBytes caps ingredient photo uploads.
const maxUploadBytes = 10 << 20

// WorkflowHandler exposes the identification/generation workflow over
// HTTP. State-changing endpoints respond with the resulting workflow
// snapshot, the same way the UI re-renders after each transition.
type WorkflowHandler struct {
	workflow *service.Workflow
}

// NewWorkflowHandler creates a new WorkflowHandler instance.
func NewWorkflowHandler(workflow *service.Workflow) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// RegisterRoutes registers the workflow routes.
func (h *WorkflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	wf := router.Group("/workflow")
	{
		wf.GET("", h.GetState)
		wf.POST("/image", h.UploadImage)
		wf.POST("/rescan", h.Rescan)
		wf.POST("/confirm", h.Confirm)
		wf.POST("/cancel", h.Cancel)
		wf.POST("/select", h.SelectRecipe)
		wf.POST("/back", h.Back)
		wf.POST("/mode", h.SetMode)
		wf.POST("/language", h.SetLanguage)
		wf.POST("/view", h.SetView)
		wf.POST("/open", h.OpenRecipe)
	}
}

// GetState returns the current workflow snapshot.
func (h *WorkflowHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.Snapshot())
}

// UploadImage accepts a multipart photo upload and starts
// identification. A new upload always supersedes whatever was in flight.
func (h *WorkflowHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	snapshot, err := h.workflow.SelectImage(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Rescan re-identifies ingredients on the stored image.
func (h *WorkflowHandler) Rescan(c *gin.Context) {
	snapshot, err := h.workflow.Rescan(c.Request.Context())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Confirm accepts the confirmed ingredient set and runs the
// mode-dependent generation path.
func (h *WorkflowHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.workflow.Confirm(c.Request.Context(), req.Ingredients)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Cancel fully resets the pipeline. Also serves the error screen's
// try-again control.
func (h *WorkflowHandler) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.Reset())
}

// SelectRecipe opens one recipe of the current result set.
func (h *WorkflowHandler) SelectRecipe(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.workflow.SelectRecipe(*req.Index)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Back leaves an opened recipe.
func (h *WorkflowHandler) Back(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.Back())
}

// SetMode switches the chef mode.
func (h *WorkflowHandler) SetMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.workflow.SetMode(model.ChefMode(req.Mode))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode: " + req.Mode})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SetLanguage switches the output locale.
func (h *WorkflowHandler) SetLanguage(c *gin.Context) {
	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.workflow.SetLanguage(model.Language(req.Language))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown language: " + req.Language})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SetView switches the top-level view.
func (h *WorkflowHandler) SetView(c *gin.Context) {
	var req ViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.workflow.SetView(model.View(req.View))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown view: " + req.View})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// OpenRecipe shows a history or favorites recipe as the current result.
func (h *WorkflowHandler) OpenRecipe(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.workflow.OpenRecipe(req.ID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
