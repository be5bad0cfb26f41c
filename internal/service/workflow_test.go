package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/internal/mocks"
	"github.com/fridgechef/backend/internal/model"
)

// tinyPNG returns a minimal valid PNG for upload tests.
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func newTestWorkflow(t *testing.T) (*Workflow, *mocks.MockGateway, *mocks.MockStore) {
	t.Helper()
	gateway := &mocks.MockGateway{}
	store := mocks.NewMockStore()
	return NewWorkflow(gateway, store), gateway, store
}

// reachSelecting uploads an image and waits for the canned identification.
func reachSelecting(t *testing.T, w *Workflow) {
	t.Helper()
	snap, err := w.SelectImage(context.Background(), tinyPNG(t))
	require.NoError(t, err)
	require.Equal(t, model.StatusSelecting, snap.Status)
}

func TestWorkflow_NewStartsIdle(t *testing.T) {
	w, _, _ := newTestWorkflow(t)

	snap := w.Snapshot()
	assert.Equal(t, model.StatusIdle, snap.Status)
	assert.Equal(t, model.ModeMichelin, snap.Mode)
	assert.Equal(t, model.LangEnglish, snap.Language)
	assert.Equal(t, model.ViewHome, snap.View)
	assert.False(t, snap.HasImage)
	assert.Equal(t, -1, snap.SelectedIndex)
	assert.Empty(t, snap.Recipes)
}

func TestWorkflow_LoadsStoredCollections(t *testing.T) {
	store := mocks.NewMockStore()
	store.Data[HistoryKey] = []model.Recipe{testRecipe("h1")}
	store.Data[FavoritesKey] = []model.Recipe{testRecipe("f1")}

	w := NewWorkflow(&mocks.MockGateway{}, store)

	require.Len(t, w.History(), 1)
	assert.Equal(t, "h1", w.History()[0].ID)
	require.Len(t, w.Favorites(), 1)
	assert.Equal(t, "f1", w.Favorites()[0].ID)
}

func TestWorkflow_LoadFailureStartsEmpty(t *testing.T) {
	store := mocks.NewMockStore()
	store.LoadErr = errors.New("store down")

	w := NewWorkflow(&mocks.MockGateway{}, store)

	assert.Empty(t, w.History())
	assert.Empty(t, w.Favorites())
	assert.Equal(t, model.StatusIdle, w.Snapshot().Status)
}

func TestWorkflow_SelectImageIdentifies(t *testing.T) {
	w, _, _ := newTestWorkflow(t)

	snap, err := w.SelectImage(context.Background(), tinyPNG(t))
	require.NoError(t, err)

	assert.Equal(t, model.StatusSelecting, snap.Status)
	assert.True(t, snap.HasImage)
	require.Len(t, snap.Detected, 2)
	assert.Equal(t, "egg", snap.Detected[0].Name)
}

func TestWorkflow_SelectImageRejectsGarbage(t *testing.T) {
	w, _, _ := newTestWorkflow(t)

	_, err := w.SelectImage(context.Background(), []byte("not an image"))
	require.Error(t, err)
	assert.Equal(t, model.StatusIdle, w.Snapshot().Status)
}

func TestWorkflow_RescanRequiresImage(t *testing.T) {
	w, _, _ := newTestWorkflow(t)

	_, err := w.Rescan(context.Background())
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestWorkflow_ConfirmStyledMode(t *testing.T) {
	w, _, store := newTestWorkflow(t)
	reachSelecting(t, w)

	snap, err := w.Confirm(context.Background(), []string{"egg", "tomato"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, snap.Status)
	require.Len(t, snap.Recipes, 1)
	assert.Equal(t, 0, snap.SelectedIndex)

	recipe := snap.Recipes[0]
	assert.NotEmpty(t, recipe.ID)
	assert.NotZero(t, recipe.Timestamp)
	assert.NotNil(t, recipe.Comments)
	assert.False(t, recipe.IsFavorite)

	// The result lands at the front of history and is persisted.
	history := w.History()
	require.Len(t, history, 1)
	assert.Equal(t, recipe.ID, history[0].ID)
	require.Len(t, store.Saved(HistoryKey), 1)
}

func TestWorkflow_ConfirmPopularMode(t *testing.T) {
	w, _, _ := newTestWorkflow(t)
	_, err := w.SetMode(model.ModePopular)
	require.NoError(t, err)
	reachSelecting(t, w)

	snap, err := w.Confirm(context.Background(), []string{"egg"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusSuccess, snap.Status)
	require.Len(t, snap.Recipes, 4)
	// Multi-result mode stays on the list view.
	assert.Equal(t, -1, snap.SelectedIndex)
	assert.Len(t, w.History(), 4)

	ids := map[string]bool{}
	for _, r := range snap.Recipes {
		require.NotEmpty(t, r.ID)
		ids[r.ID] = true
	}
	assert.Len(t, ids, 4)
}

func TestWorkflow_ConfirmGuards(t *testing.T) {
	t.Run("empty selection", func(t *testing.T) {
		w, _, _ := newTestWorkflow(t)
		reachSelecting(t, w)
		_, err := w.Confirm(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoIngredients)
	})

	t.Run("no image", func(t *testing.T) {
		w, _, _ := newTestWorkflow(t)
		_, err := w.Confirm(context.Background(), []string{"egg"})
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("wrong state", func(t *testing.T) {
		w, _, _ := newTestWorkflow(t)
		reachSelecting(t, w)
		_, err := w.Confirm(context.Background(), []string{"egg"})
		require.NoError(t, err)

		// Already in success, confirming again is invalid.
		_, err = w.Confirm(context.Background(), []string{"egg"})
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestWorkflow_GatewayFailureMessages(t *testing.T) {
	boom := &GatewayError{Op: "identify", Err: errors.New("boom")}

	t.Run("english", func(t *testing.T) {
		w, gateway, _ := newTestWorkflow(t)
		gateway.IdentifyFn = func(ctx context.Context, imageDataURL string, lang model.Language) ([]model.DetectedIngredient, error) {
			return nil, boom
		}

		snap, err := w.SelectImage(context.Background(), tinyPNG(t))
		require.NoError(t, err)
		assert.Equal(t, model.StatusError, snap.Status)
		assert.Equal(t, gatewayErrorMessages[model.LangEnglish], snap.Error)
	})

	t.Run("chinese", func(t *testing.T) {
		w, gateway, _ := newTestWorkflow(t)
		gateway.IdentifyFn = func(ctx context.Context, imageDataURL string, lang model.Language) ([]model.DetectedIngredient, error) {
			return nil, boom
		}
		_, err := w.SetLanguage(model.LangChinese)
		require.NoError(t, err)

		snap, err := w.SelectImage(context.Background(), tinyPNG(t))
		require.NoError(t, err)
		assert.Equal(t, model.StatusError, snap.Status)
		assert.Equal(t, gatewayErrorMessages[model.LangChinese], snap.Error)
	})
}

func TestWorkflow_ResetClearsEverything(t *testing.T) {
	w, _, _ := newTestWorkflow(t)
	reachSelecting(t, w)
	_, err := w.Confirm(context.Background(), []string{"egg"})
	require.NoError(t, err)
	historyBefore := w.History()

	snap := w.Reset()

	assert.Equal(t, model.StatusIdle, snap.Status)
	assert.False(t, snap.HasImage)
	assert.Empty(t, snap.Detected)
	assert.Empty(t, snap.Recipes)
	assert.Equal(t, -1, snap.SelectedIndex)
	assert.Empty(t, snap.Error)
	// History survives the pipeline reset.
	assert.Equal(t, historyBefore, w.History())
}

func TestWorkflow_StaleIdentifyDiscarded(t *testing.T) {
	w, gateway, _ := newTestWorkflow(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	gateway.IdentifyFn = func(ctx context.Context, imageDataURL string, lang model.Language) ([]model.DetectedIngredient, error) {
		close(entered)
		<-release
		return []model.DetectedIngredient{{Name: "stale"}}, nil
	}

	type result struct {
		snap Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := w.SelectImage(context.Background(), tinyPNG(t))
		done <- result{snap, err}
	}()

	// Reset while the gateway call is still in flight, then let it finish.
	<-entered
	w.Reset()
	close(release)

	res := <-done
	require.NoError(t, res.err)

	// The late result must not resurrect the cancelled analysis.
	assert.Equal(t, model.StatusIdle, res.snap.Status)
	assert.Empty(t, res.snap.Detected)
	assert.Equal(t, model.StatusIdle, w.Snapshot().Status)
}

func TestWorkflow_StaleGenerateDiscarded(t *testing.T) {
	w, gateway, _ := newTestWorkflow(t)
	reachSelecting(t, w)

	entered := make(chan struct{})
	release := make(chan struct{})
	gateway.GenerateStyledFn = func(ctx context.Context, imageDataURL string, ingredients []string, mode model.ChefMode, lang model.Language) (model.Recipe, error) {
		close(entered)
		<-release
		return model.Recipe{Title: "Stale Dish"}, nil
	}

	done := make(chan Snapshot, 1)
	go func() {
		snap, _ := w.Confirm(context.Background(), []string{"egg"})
		done <- snap
	}()

	<-entered
	w.Reset()
	close(release)

	snap := <-done
	assert.Equal(t, model.StatusIdle, snap.Status)
	assert.Empty(t, snap.Recipes)
	// A discarded result never reaches history.
	assert.Empty(t, w.History())
}

func TestWorkflow_SelectRecipe(t *testing.T) {
	w, _, _ := newTestWorkflow(t)
	_, err := w.SetMode(model.ModePopular)
	require.NoError(t, err)
	reachSelecting(t, w)
	_, err = w.Confirm(context.Background(), []string{"egg"})
	require.NoError(t, err)

	snap, err := w.SelectRecipe(2)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.SelectedIndex)

	snap, err = w.SelectRecipe(-1)
	require.NoError(t, err)
	assert.Equal(t, -1, snap.SelectedIndex)

	_, err = w.SelectRecipe(4)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = w.SelectRecipe(-2)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestWorkflow_SelectRecipeOutsideSuccess(t *testing.T) {
	w, _, _ := newTestWorkflow(t)
	_, err := w.SelectRecipe(0)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestWorkflow_Back(t *testing.T) {
	t.Run("multiple results return to the list", func(t *testing.T) {
		w, _, _ := newTestWorkflow(t)
		_, err := w.SetMode(model.ModePopular)
		require.NoError(t, err)
		reachSelecting(t, w)
		_, err = w.Confirm(context.Background(), []string{"egg"})
		require.NoError(t, err)
		_, err = w.SelectRecipe(1)
		require.NoError(t, err)

		snap := w.Back()
		assert.Equal(t, model.StatusSuccess, snap.Status)
		assert.Equal(t, -1, snap.SelectedIndex)
		assert.Len(t, snap.Recipes, 4)
	})

	t.Run("single result resets the pipeline", func(t *testing.T) {
		w, _, _ := newTestWorkflow(t)
		reachSelecting(t, w)
		_, err := w.Confirm(context.Background(), []string{"egg"})
		require.NoError(t, err)

		snap := w.Back()
		assert.Equal(t, model.StatusIdle, snap.Status)
		assert.Empty(t, snap.Recipes)
		assert.False(t, snap.HasImage)
	})
}

func TestWorkflow_SettersValidate(t *testing.T) {
	w, _, _ := newTestWorkflow(t)

	_, err := w.SetMode("barbecue")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = w.SetLanguage("fr")
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = w.SetView("settings")
	assert.ErrorIs(t, err, ErrInvalidState)

	snap, err := w.SetView(model.ViewHistory)
	require.NoError(t, err)
	assert.Equal(t, model.ViewHistory, snap.View)
	// Switching views leaves the pipeline alone.
	assert.Equal(t, model.StatusIdle, snap.Status)
}

func TestWorkflow_OpenRecipeFromHistory(t *testing.T) {
	w, _, _ := newTestWorkflow(t)
	reachSelecting(t, w)
	_, err := w.Confirm(context.Background(), []string{"egg"})
	require.NoError(t, err)
	id := w.History()[0].ID

	_, err = w.SetView(model.ViewHistory)
	require.NoError(t, err)

	snap, err := w.OpenRecipe(id)
	require.NoError(t, err)

	assert.Equal(t, model.ViewHome, snap.View)
	assert.Equal(t, model.StatusSuccess, snap.Status)
	require.Len(t, snap.Recipes, 1)
	assert.Equal(t, id, snap.Recipes[0].ID)
	assert.Equal(t, 0, snap.SelectedIndex)
	assert.False(t, snap.HasImage)

	_, err = w.OpenRecipe("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkflow_FavoriteAcrossCollections(t *testing.T) {
	w, _, store := newTestWorkflow(t)
	reachSelecting(t, w)
	_, err := w.Confirm(context.Background(), []string{"egg"})
	require.NoError(t, err)
	id := w.History()[0].ID

	require.NoError(t, w.ToggleFavorite(id))

	favorites := w.Favorites()
	require.Len(t, favorites, 1)
	assert.Equal(t, id, favorites[0].ID)
	assert.True(t, favorites[0].IsFavorite)
	assert.True(t, w.History()[0].IsFavorite)
	assert.True(t, w.Snapshot().Recipes[0].IsFavorite)
	require.Len(t, store.Saved(FavoritesKey), 1)

	require.NoError(t, w.ToggleFavorite(id))
	assert.Empty(t, w.Favorites())
	assert.False(t, w.History()[0].IsFavorite)
	assert.Empty(t, store.Saved(FavoritesKey))

	assert.ErrorIs(t, w.ToggleFavorite("missing"), ErrNotFound)
}

func TestWorkflow_MutationsPropagate(t *testing.T) {
	w, _, _ := newTestWorkflow(t)
	reachSelecting(t, w)
	_, err := w.Confirm(context.Background(), []string{"egg"})
	require.NoError(t, err)
	id := w.History()[0].ID
	require.NoError(t, w.ToggleFavorite(id))

	recipe, err := w.AddComment(id, "tasty")
	require.NoError(t, err)
	require.Len(t, recipe.Comments, 1)
	assert.Equal(t, "tasty", recipe.Comments[0].Text)

	_, err = w.AddComment(id, "  ")
	assert.ErrorIs(t, err, ErrEmptyText)
	_, err = w.AddComment("missing", "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	recipe, err = w.Rate(id, 5)
	require.NoError(t, err)
	require.NotNil(t, recipe.Rating)
	assert.Equal(t, 5, *recipe.Rating)

	recipe, err = w.AddTag(id, "dinner")
	require.NoError(t, err)
	assert.Equal(t, []string{"dinner"}, recipe.Tags)

	_, err = w.AddTag(id, "  ")
	assert.ErrorIs(t, err, ErrEmptyText)

	// Every copy agrees after the whole batch.
	assert.Equal(t, w.History()[0], w.Favorites()[0])
	assert.Equal(t, w.History()[0], w.Snapshot().Recipes[0])

	recipe, err = w.RemoveTag(id, "dinner")
	require.NoError(t, err)
	assert.Empty(t, recipe.Tags)
}

func TestWorkflow_PersistFailureIsBestEffort(t *testing.T) {
	w, _, store := newTestWorkflow(t)
	reachSelecting(t, w)
	store.SaveErr = errors.New("disk full")

	snap, err := w.Confirm(context.Background(), []string{"egg"})
	require.NoError(t, err)

	// The in-memory result is unaffected by the failed save.
	assert.Equal(t, model.StatusSuccess, snap.Status)
	assert.Len(t, w.History(), 1)
	assert.Positive(t, store.SaveCalls)

	id := w.History()[0].ID
	require.NoError(t, w.ToggleFavorite(id))
	assert.Len(t, w.Favorites(), 1)
}
