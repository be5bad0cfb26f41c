package mocks

import (
	"context"
	"sync"

	"github.com/fridgechef/backend/internal/model"
)

// MockGateway is a hand-rolled RecipeGateway for tests. Unset function
// fields fall back to canned successful responses.
type MockGateway struct {
	IdentifyFn       func(ctx context.Context, imageDataURL string, lang model.Language) ([]model.DetectedIngredient, error)
	GenerateStyledFn func(ctx context.Context, imageDataURL string, ingredients []string, mode model.ChefMode, lang model.Language) (model.Recipe, error)
	SearchPopularFn  func(ctx context.Context, ingredients []string, lang model.Language) ([]model.Recipe, error)
}

func (m *MockGateway) Identify(ctx context.Context, imageDataURL string, lang model.Language) ([]model.DetectedIngredient, error) {
	if m.IdentifyFn != nil {
		return m.IdentifyFn(ctx, imageDataURL, lang)
	}
	return []model.DetectedIngredient{{Name: "egg"}, {Name: "tomato"}}, nil
}

func (m *MockGateway) GenerateStyled(ctx context.Context, imageDataURL string, ingredients []string, mode model.ChefMode, lang model.Language) (model.Recipe, error) {
	if m.GenerateStyledFn != nil {
		return m.GenerateStyledFn(ctx, imageDataURL, ingredients, mode, lang)
	}
	return model.Recipe{
		Title:               "Mock Dish",
		Description:         "A dish from the mock kitchen",
		IngredientsDetected: append([]string(nil), ingredients...),
		Steps:               []string{"Mix", "Cook"},
		CookingTime:         "20 min",
		Difficulty:          "Easy",
		ChefComment:         "Exquisite.",
	}, nil
}

func (m *MockGateway) SearchPopular(ctx context.Context, ingredients []string, lang model.Language) ([]model.Recipe, error) {
	if m.SearchPopularFn != nil {
		return m.SearchPopularFn(ctx, ingredients, lang)
	}
	recipes := make([]model.Recipe, 4)
	for i := range recipes {
		recipes[i] = model.Recipe{
			Title:               "Popular Dish",
			Description:         "Everyone cooks this",
			IngredientsDetected: append([]string(nil), ingredients...),
			Steps:               []string{"Prep", "Cook", "Serve"},
			CookingTime:         "30 min",
			Difficulty:          "Medium",
			ChefComment:         "A weeknight classic.",
		}
	}
	return recipes, nil
}

// MockStore is an in-memory CollectionStore that records what was saved.
type MockStore struct {
	mu        sync.Mutex
	LoadErr   error
	SaveErr   error
	Data      map[string][]model.Recipe
	SaveCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{Data: make(map[string][]model.Recipe)}
}

func (s *MockStore) Load(ctx context.Context, key string) ([]model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.Data[key], nil
}

func (s *MockStore) Save(ctx context.Context, key string, recipes []model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCalls++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	stored := make([]model.Recipe, len(recipes))
	for i, r := range recipes {
		stored[i] = r.Clone()
	}
	s.Data[key] = stored
	return nil
}

// Saved returns the last saved value for a key.
func (s *MockStore) Saved(key string) []model.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Data[key]
}
