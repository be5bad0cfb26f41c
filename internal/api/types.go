package api

import (
	"errors"
	"net/http"

	"github.com/fridgechef/backend/internal/service"
)

// statusForError maps workflow errors to HTTP status codes. Validation
// failures are the client's to fix; anything unknown is a server fault.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoImage),
		errors.Is(err, service.ErrNoIngredients),
		errors.Is(err, service.ErrEmptyText),
		errors.Is(err, service.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ConfirmRequest carries the user-confirmed ingredient names.
type ConfirmRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// SelectRequest picks a recipe out of the current result set; -1 returns
// to the list.
type SelectRequest struct {
	Index *int `json:"index" binding:"required"`
}

// ModeRequest switches the chef mode.
type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// LanguageRequest switches the output locale.
type LanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// ViewRequest switches the top-level view.
type ViewRequest struct {
	View string `json:"view" binding:"required"`
}

// OpenRequest shows a stored recipe as the current result.
type OpenRequest struct {
	ID string `json:"id" binding:"required"`
}

// CommentRequest adds a comment to a recipe.
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// RatingRequest rates a recipe from 1 to 5.
type RatingRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// TagRequest adds a tag to a recipe.
type TagRequest struct {
	Tag string `json:"tag" binding:"required"`
}
