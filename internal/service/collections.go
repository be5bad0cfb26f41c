package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fridgechef/backend/internal/model"
)

// historyLimit bounds the history log; the oldest entries are evicted
// when a generation pushes it past the limit.
const historyLimit = 50

// Collections are the three containers that can each hold an independent
// copy of a recipe: the current result set, the history log and the
// favorites list. Every mutation is applied to every container holding
// the target ID, otherwise the copies silently diverge.
//
// A container without the target ID is left structurally untouched so
// callers can cheaply detect which containers changed.
type Collections struct {
	Current   []model.Recipe
	History   []model.Recipe
	Favorites []model.Recipe
}

// Find returns a copy of the recipe with the given ID from whichever
// container holds it first.
func (c *Collections) Find(id string) (model.Recipe, bool) {
	for _, list := range [][]model.Recipe{c.Current, c.History, c.Favorites} {
		for i := range list {
			if list[i].ID == id {
				return list[i].Clone(), true
			}
		}
	}
	return model.Recipe{}, false
}

// applyAll runs fn against the copy of id in every container holding it
// and reports whether any container was touched.
func (c *Collections) applyAll(id string, fn func(*model.Recipe)) bool {
	changed := false
	for _, list := range [][]model.Recipe{c.Current, c.History, c.Favorites} {
		for i := range list {
			if list[i].ID == id {
				fn(&list[i])
				changed = true
			}
		}
	}
	return changed
}

// PushHistory prepends the recipes to the history log, newest first, and
// evicts the oldest entries past the limit. The log keeps its own copies.
func (c *Collections) PushHistory(recipes []model.Recipe) {
	entries := make([]model.Recipe, 0, len(recipes)+len(c.History))
	for _, r := range recipes {
		entries = append(entries, r.Clone())
	}
	entries = append(entries, c.History...)
	if len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}
	c.History = entries
}

// ToggleFavorite flips the favorite state of the recipe. Adding clones
// the recipe to the front of the favorites list; removing drops the entry
// entirely. Every remaining copy has IsFavorite set to the new value.
// No-op when no container holds the ID. Toggling twice restores the
// original state.
func (c *Collections) ToggleFavorite(id string) bool {
	target, ok := c.Find(id)
	if !ok {
		return false
	}

	isFavorite := false
	for i := range c.Favorites {
		if c.Favorites[i].ID == id {
			isFavorite = true
			break
		}
	}

	if isFavorite {
		kept := make([]model.Recipe, 0, len(c.Favorites)-1)
		for _, r := range c.Favorites {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		c.Favorites = kept
	} else {
		entry := target.Clone()
		entry.IsFavorite = true
		c.Favorites = append([]model.Recipe{entry}, c.Favorites...)
	}

	c.applyAll(id, func(r *model.Recipe) {
		r.IsFavorite = !isFavorite
	})
	return true
}

// AddComment prepends a new comment to every copy of the recipe. Blank
// text is a no-op.
func (c *Collections) AddComment(id, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	comment := model.Comment{
		ID:        uuid.New().String(),
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	return c.applyAll(id, func(r *model.Recipe) {
		r.Comments = append([]model.Comment{comment}, r.Comments...)
	})
}

// Rate sets the rating on every copy of the recipe. Last write wins.
func (c *Collections) Rate(id string, rating int) bool {
	return c.applyAll(id, func(r *model.Recipe) {
		value := rating
		r.Rating = &value
	})
}

// AddTag appends the tag to every copy of the recipe. Blank tags and
// already-present tags (case-sensitive) are no-ops.
func (c *Collections) AddTag(id, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}

	if existing, ok := c.Find(id); !ok || existing.HasTag(tag) {
		return false
	}

	return c.applyAll(id, func(r *model.Recipe) {
		r.Tags = append(r.Tags, tag)
	})
}

// RemoveTag removes the exact-match tag from every copy of the recipe.
// No-op when the tag is absent.
func (c *Collections) RemoveTag(id, tag string) bool {
	if existing, ok := c.Find(id); !ok || !existing.HasTag(tag) {
		return false
	}

	return c.applyAll(id, func(r *model.Recipe) {
		kept := make([]string, 0, len(r.Tags))
		for _, t := range r.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		r.Tags = kept
	})
}
