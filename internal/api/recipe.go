package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fridgechef/backend/internal/service"
)

// RecipeHandler exposes the per-recipe mutations (favorite, comment,
// rating, tags) and the share text. Every mutation goes through the
// workflow so all collection copies of the recipe stay in sync.
type RecipeHandler struct {
	workflow *service.Workflow
}

// NewRecipeHandler creates a new RecipeHandler instance.
func NewRecipeHandler(workflow *service.Workflow) *RecipeHandler {
	return &RecipeHandler{workflow: workflow}
}

// RegisterRoutes registers the recipe routes.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/:id/favorite", h.ToggleFavorite)
		recipes.POST("/:id/comments", h.AddComment)
		recipes.PUT("/:id/rating", h.RateRecipe)
		recipes.POST("/:id/tags", h.AddTag)
		recipes.DELETE("/:id/tags/:tag", h.RemoveTag)
		recipes.GET("/:id/share", h.Share)
	}
}

// ToggleFavorite flips the favorite state of the recipe. The response
// carries the updated copy, or null when unfavoriting removed the only
// copy that existed.
func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")
	if err := h.workflow.ToggleFavorite(id); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if recipe, err := h.workflow.FindRecipe(id); err == nil {
		c.JSON(http.StatusOK, gin.H{"recipe": recipe})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": nil})
}

// AddComment appends a comment to the recipe.
func (h *RecipeHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.workflow.AddComment(c.Param("id"), req.Text)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// RateRecipe sets the 1-5 rating. Last write wins.
func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.workflow.Rate(c.Param("id"), req.Rating)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// AddTag adds a tag; adding an existing tag leaves the recipe unchanged.
func (h *RecipeHandler) AddTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.workflow.AddTag(c.Param("id"), req.Tag)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// RemoveTag removes a tag; removing an absent tag is a no-op.
func (h *RecipeHandler) RemoveTag(c *gin.Context) {
	recipe, err := h.workflow.RemoveTag(c.Param("id"), c.Param("tag"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

// Share returns the plain-text summary of the recipe in the current
// workflow language.
func (h *RecipeHandler) Share(c *gin.Context) {
	recipe, err := h.workflow.FindRecipe(c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	lang := h.workflow.Snapshot().Language
	c.String(http.StatusOK, service.ShareText(recipe, lang))
}
