package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fridgechef/backend/internal/model"
)

// Validation failures callers are expected to prevent at the boundary.
var (
	ErrNoImage       = errors.New("no image captured")
	ErrNoIngredients = errors.New("no ingredients selected")
	ErrInvalidState  = errors.New("action not available in current state")
	ErrEmptyText     = errors.New("text is empty")
	ErrNotFound      = errors.New("recipe not found")
)

// One generic failure message per language. The gateway never surfaces
// the underlying cause to the user.
var gatewayErrorMessages = map[model.Language]string{
	model.LangEnglish: "The chef hit a snag talking to the kitchen. Please try again.",
	model.LangChinese: "厨师这次失手了，请稍后再试。",
}

// Workflow owns the ingredient-identification, selection and
// recipe-generation lifecycle for the single local user, plus the three
// recipe collections. All state transitions are serialized by the mutex;
// gateway calls run with the lock released and their results are applied
// only when the generation counter still matches, so a superseded call
// (rescan, new image, cancel) is discarded rather than cancelled.
type Workflow struct {
	mu      sync.Mutex
	gateway RecipeGateway
	store   CollectionStore

	status   model.Status
	mode     model.ChefMode
	language model.Language
	view     model.View

	imagePreview string
	detected     []model.DetectedIngredient
	collections  Collections
	selected     int
	errMessage   string

	generation uint64
}

// NewWorkflow creates the workflow session and loads the durable
// collections. Missing or corrupt stored data starts empty, never fails.
func NewWorkflow(gateway RecipeGateway, store CollectionStore) *Workflow {
	ctx := context.Background()
	return &Workflow{
		gateway:  gateway,
		store:    store,
		status:   model.StatusIdle,
		mode:     model.ModeMichelin,
		language: model.LangEnglish,
		view:     model.ViewHome,
		selected: -1,
		collections: Collections{
			History:   loadOrEmpty(ctx, store, HistoryKey),
			Favorites: loadOrEmpty(ctx, store, FavoritesKey),
		},
	}
}

// Snapshot is a point-in-time view of the workflow state for the API.
type Snapshot struct {
	Status        model.Status               `json:"status"`
	Mode          model.ChefMode             `json:"mode"`
	Language      model.Language             `json:"language"`
	View          model.View                 `json:"view"`
	HasImage      bool                       `json:"hasImage"`
	ImagePreview  string                     `json:"imagePreview,omitempty"`
	Detected      []model.DetectedIngredient `json:"detectedIngredients"`
	Recipes       []model.Recipe             `json:"recipes"`
	SelectedIndex int                        `json:"selectedRecipeIndex"`
	Error         string                     `json:"error,omitempty"`
}

// Snapshot returns the current workflow state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	recipes := make([]model.Recipe, 0, len(w.collections.Current))
	for _, r := range w.collections.Current {
		recipes = append(recipes, r.Clone())
	}
	detected := append([]model.DetectedIngredient(nil), w.detected...)

	return Snapshot{
		Status:        w.status,
		Mode:          w.mode,
		Language:      w.language,
		View:          w.view,
		HasImage:      w.imagePreview != "",
		ImagePreview:  w.imagePreview,
		Detected:      detected,
		Recipes:       recipes,
		SelectedIndex: w.selected,
		Error:         w.errMessage,
	}
}

// SelectImage captures a new photo and runs identification on it. A new
// selection always starts a fresh identify call; whatever was in flight
// becomes stale.
func (w *Workflow) SelectImage(ctx context.Context, imageData []byte) (Snapshot, error) {
	preview, err := EncodeImageDataURL(imageData)
	if err != nil {
		return w.Snapshot(), err
	}

	w.mu.Lock()
	w.imagePreview = preview
	w.detected = nil
	w.status = model.StatusAnalyzing
	w.errMessage = ""
	w.generation++
	gen := w.generation
	lang := w.language
	w.mu.Unlock()

	return w.identify(ctx, gen, preview, lang), nil
}

// Rescan re-runs identification on the already-captured image without
// re-uploading.
func (w *Workflow) Rescan(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	if w.imagePreview == "" {
		defer w.mu.Unlock()
		return w.snapshotLocked(), ErrNoImage
	}
	w.status = model.StatusAnalyzing
	w.errMessage = ""
	w.generation++
	gen := w.generation
	preview := w.imagePreview
	lang := w.language
	w.mu.Unlock()

	return w.identify(ctx, gen, preview, lang), nil
}

// identify performs the gateway call with the lock released and applies
// the outcome only if gen is still current.
func (w *Workflow) identify(ctx context.Context, gen uint64, preview string, lang model.Language) Snapshot {
	ingredients, err := w.gateway.Identify(ctx, preview, lang)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		// Superseded by a rescan, a new image or a reset.
		return w.snapshotLocked()
	}

	if err != nil {
		log.Printf("Identify failed: %v", err)
		w.status = model.StatusError
		w.errMessage = gatewayErrorMessages[lang]
		return w.snapshotLocked()
	}

	w.status = model.StatusSelecting
	w.detected = ingredients
	return w.snapshotLocked()
}

// Confirm takes the user-confirmed ingredient names and branches on the
// mode fixed at this moment: popular mode short-circuits into the
// multi-result search, the other two generate one styled recipe.
func (w *Workflow) Confirm(ctx context.Context, ingredients []string) (Snapshot, error) {
	if len(ingredients) == 0 {
		return w.Snapshot(), ErrNoIngredients
	}

	w.mu.Lock()
	if w.imagePreview == "" {
		defer w.mu.Unlock()
		return w.snapshotLocked(), ErrNoImage
	}
	if w.status != model.StatusSelecting {
		defer w.mu.Unlock()
		return w.snapshotLocked(), ErrInvalidState
	}

	mode := w.mode
	lang := w.language
	preview := w.imagePreview

	w.status = model.StatusCooking
	w.errMessage = ""
	w.collections.Current = nil
	if mode == model.ModePopular {
		w.selected = -1
	} else {
		w.selected = 0
	}
	w.generation++
	gen := w.generation
	w.mu.Unlock()

	if mode == model.ModePopular {
		return w.search(ctx, gen, ingredients, lang), nil
	}
	return w.generate(ctx, gen, preview, ingredients, mode, lang), nil
}

func (w *Workflow) generate(ctx context.Context, gen uint64, preview string, ingredients []string, mode model.ChefMode, lang model.Language) Snapshot {
	recipe, err := w.gateway.GenerateStyled(ctx, preview, ingredients, mode, lang)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		return w.snapshotLocked()
	}

	if err != nil {
		log.Printf("Generate failed: %v", err)
		w.status = model.StatusError
		w.errMessage = gatewayErrorMessages[lang]
		return w.snapshotLocked()
	}

	assignIdentity(&recipe)
	w.collections.Current = []model.Recipe{recipe}
	w.collections.PushHistory(w.collections.Current)
	w.persistLocked()

	w.status = model.StatusSuccess
	w.selected = 0
	return w.snapshotLocked()
}

func (w *Workflow) search(ctx context.Context, gen uint64, ingredients []string, lang model.Language) Snapshot {
	recipes, err := w.gateway.SearchPopular(ctx, ingredients, lang)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		return w.snapshotLocked()
	}

	if err != nil {
		log.Printf("Search failed: %v", err)
		w.status = model.StatusError
		w.errMessage = gatewayErrorMessages[lang]
		return w.snapshotLocked()
	}

	for i := range recipes {
		assignIdentity(&recipes[i])
	}
	w.collections.Current = recipes
	w.collections.PushHistory(recipes)
	w.persistLocked()

	w.status = model.StatusSuccess
	w.selected = -1
	return w.snapshotLocked()
}

// assignIdentity stamps the caller-owned fields the gateway never sets.
func assignIdentity(r *model.Recipe) {
	r.ID = uuid.New().String()
	r.Timestamp = time.Now().UnixMilli()
	r.Comments = []model.Comment{}
	r.IsFavorite = false
}

// Reset performs the full pipeline reset shared by cancel and try-again:
// image, preview, detected ingredients, results and error are all
// cleared. Any in-flight gateway call becomes stale.
func (w *Workflow) Reset() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
	return w.snapshotLocked()
}

func (w *Workflow) resetLocked() {
	w.imagePreview = ""
	w.detected = nil
	w.collections.Current = nil
	w.selected = -1
	w.errMessage = ""
	w.status = model.StatusIdle
	w.view = model.ViewHome
	w.generation++
}

// SelectRecipe opens one recipe of the current result set without
// leaving the success state. Index -1 returns to the list.
func (w *Workflow) SelectRecipe(index int) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status != model.StatusSuccess {
		return w.snapshotLocked(), ErrInvalidState
	}
	if index < -1 || index >= len(w.collections.Current) {
		return w.snapshotLocked(), ErrInvalidState
	}
	w.selected = index
	return w.snapshotLocked(), nil
}

// Back leaves an opened recipe: with more than one result it returns to
// the list, with a single result it resets the whole pipeline.
func (w *Workflow) Back() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == model.StatusSuccess && len(w.collections.Current) > 1 {
		w.selected = -1
	} else {
		w.resetLocked()
	}
	return w.snapshotLocked()
}

// SetMode switches the chef mode. The mode only takes effect at the
// moment ingredients are confirmed.
func (w *Workflow) SetMode(mode model.ChefMode) (Snapshot, error) {
	if !mode.Valid() {
		return w.Snapshot(), ErrInvalidState
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = mode
	return w.snapshotLocked(), nil
}

// SetLanguage switches the output locale for subsequent gateway calls.
func (w *Workflow) SetLanguage(lang model.Language) (Snapshot, error) {
	if !lang.Valid() {
		return w.Snapshot(), ErrInvalidState
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.language = lang
	return w.snapshotLocked(), nil
}

// SetView switches the top-level view. The pipeline state machine is
// untouched; coming back to home shows whatever state it was in.
func (w *Workflow) SetView(view model.View) (Snapshot, error) {
	if !view.Valid() {
		return w.Snapshot(), ErrInvalidState
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view = view
	return w.snapshotLocked(), nil
}

// OpenRecipe shows a recipe from history or favorites as the single
// current result, leaving the stored image out of it.
func (w *Workflow) OpenRecipe(id string) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	recipe, ok := w.collections.Find(id)
	if !ok {
		return w.snapshotLocked(), ErrNotFound
	}
	w.view = model.ViewHome
	w.status = model.StatusSuccess
	w.collections.Current = []model.Recipe{recipe}
	w.selected = 0
	w.imagePreview = ""
	w.generation++
	return w.snapshotLocked(), nil
}

// History returns a copy of the history log, most recent first.
func (w *Workflow) History() []model.Recipe {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Recipe, 0, len(w.collections.History))
	for _, r := range w.collections.History {
		out = append(out, r.Clone())
	}
	return out
}

// Favorites returns a copy of the favorites list, most recently
// favorited first.
func (w *Workflow) Favorites() []model.Recipe {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Recipe, 0, len(w.collections.Favorites))
	for _, r := range w.collections.Favorites {
		out = append(out, r.Clone())
	}
	return out
}

// FindRecipe returns a copy of the recipe from whichever collection
// holds it.
func (w *Workflow) FindRecipe(id string) (model.Recipe, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	recipe, ok := w.collections.Find(id)
	if !ok {
		return model.Recipe{}, ErrNotFound
	}
	return recipe, nil
}

// ToggleFavorite flips favorite state across every collection copy.
func (w *Workflow) ToggleFavorite(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.collections.ToggleFavorite(id) {
		return ErrNotFound
	}
	w.persistLocked()
	return nil
}

// AddComment appends a comment to every collection copy of the recipe.
func (w *Workflow) AddComment(id, text string) (model.Recipe, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.collections.Find(id); !ok {
		return model.Recipe{}, ErrNotFound
	}
	if !w.collections.AddComment(id, text) {
		return model.Recipe{}, ErrEmptyText
	}
	w.persistLocked()
	recipe, _ := w.collections.Find(id)
	return recipe, nil
}

// Rate sets the rating on every collection copy. Last write wins.
func (w *Workflow) Rate(id string, rating int) (model.Recipe, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.collections.Rate(id, rating) {
		return model.Recipe{}, ErrNotFound
	}
	w.persistLocked()
	recipe, _ := w.collections.Find(id)
	return recipe, nil
}

// AddTag adds a tag to every collection copy; duplicates are no-ops.
func (w *Workflow) AddTag(id, tag string) (model.Recipe, error) {
	if strings.TrimSpace(tag) == "" {
		return model.Recipe{}, ErrEmptyText
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	recipe, ok := w.collections.Find(id)
	if !ok {
		return model.Recipe{}, ErrNotFound
	}
	if w.collections.AddTag(id, tag) {
		w.persistLocked()
		recipe, _ = w.collections.Find(id)
	}
	return recipe, nil
}

// RemoveTag removes a tag from every collection copy; absent tags are
// no-ops.
func (w *Workflow) RemoveTag(id, tag string) (model.Recipe, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	recipe, ok := w.collections.Find(id)
	if !ok {
		return model.Recipe{}, ErrNotFound
	}
	if w.collections.RemoveTag(id, tag) {
		w.persistLocked()
		recipe, _ = w.collections.Find(id)
	}
	return recipe, nil
}

// persistLocked writes both durable collections. Best effort: failures
// are logged and never surfaced to the user.
func (w *Workflow) persistLocked() {
	ctx := context.Background()
	if err := w.store.Save(ctx, HistoryKey, w.collections.History); err != nil {
		log.Printf("Failed to save history: %v", err)
	}
	if err := w.store.Save(ctx, FavoritesKey, w.collections.Favorites); err != nil {
		log.Printf("Failed to save favorites: %v", err)
	}
}
