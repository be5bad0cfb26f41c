package model

// ChefMode selects the generation path chosen when the user confirms
// ingredients: one of two styled single-recipe personas, or a popular
// multi-result search.
type ChefMode string

const (
	ModeMichelin ChefMode = "michelin"
	ModeHell     ChefMode = "hell"
	ModePopular  ChefMode = "popular"
)

// Valid reports whether the mode is one of the three known modes.
func (m ChefMode) Valid() bool {
	return m == ModeMichelin || m == ModeHell || m == ModePopular
}

// Language is one of the two supported output locales.
type Language string

const (
	LangEnglish Language = "en"
	LangChinese Language = "zh"
)

func (l Language) Valid() bool {
	return l == LangEnglish || l == LangChinese
}

// Status is the workflow pipeline state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing_image"
	StatusSelecting Status = "selecting_ingredients"
	StatusCooking   Status = "cooking"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// View is the top-level screen selector, orthogonal to Status.
type View string

const (
	ViewHome      View = "home"
	ViewHistory   View = "history"
	ViewFavorites View = "favorites"
)

func (v View) Valid() bool {
	return v == ViewHome || v == ViewHistory || v == ViewFavorites
}
