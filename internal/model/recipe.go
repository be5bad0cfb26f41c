package model

// Comment is a user note attached to a recipe. Immutable once created.
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Recipe is a generated or retrieved dish record. The display fields are
// fixed at creation; only IsFavorite, Comments, Rating and Tags change
// afterwards, and only through the collection mutation operations.
type Recipe struct {
	ID                  string    `json:"id"`
	Timestamp           int64     `json:"timestamp"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	IngredientsDetected []string  `json:"ingredientsDetected"`
	Steps               []string  `json:"steps"`
	CookingTime         string    `json:"cookingTime"`
	Difficulty          string    `json:"difficulty"`
	ChefComment         string    `json:"chefComment"`
	IsFavorite          bool      `json:"isFavorite"`
	Comments            []Comment `json:"comments"`
	Rating              *int      `json:"rating,omitempty"`
	Tags                []string  `json:"tags,omitempty"`
}

// Clone returns a deep copy. Collections hold independent copies of a
// recipe keyed by ID, so sharing backing arrays between them would let
// copies diverge silently.
func (r Recipe) Clone() Recipe {
	out := r
	out.IngredientsDetected = append([]string(nil), r.IngredientsDetected...)
	out.Steps = append([]string(nil), r.Steps...)
	out.Comments = append([]Comment(nil), r.Comments...)
	out.Tags = append([]string(nil), r.Tags...)
	if r.Rating != nil {
		rating := *r.Rating
		out.Rating = &rating
	}
	return out
}

// HasTag reports whether the recipe carries the tag (case-sensitive).
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
