package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fridgechef/backend/internal/model"
)

// RecipeGateway is the boundary to the external vision and text
// generation service. Implementations are stateless beyond request
// parameters; the caller assigns ID, Timestamp, Comments and IsFavorite
// on returned recipes after the call comes back.
type RecipeGateway interface {
	// Identify detects the edible ingredients in the image. A missing
	// bounding box on an ingredient is not an error.
	Identify(ctx context.Context, imageDataURL string, lang model.Language) ([]model.DetectedIngredient, error)

	// GenerateStyled creates one recipe from the image and the confirmed
	// ingredient names, voiced by the persona the mode selects.
	GenerateStyled(ctx context.Context, imageDataURL string, ingredients []string, mode model.ChefMode, lang model.Language) (model.Recipe, error)

	// SearchPopular returns a batch of real-world recipes matching the
	// confirmed ingredient names. No image input.
	SearchPopular(ctx context.Context, ingredients []string, lang model.Language) ([]model.Recipe, error)
}

// GatewayError is the single failure kind the workflow sees from the
// gateway. Network errors, non-2xx responses, empty bodies and
// unparseable JSON all collapse into it; the workflow surfaces one
// generic localized message regardless of cause.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err is (or wraps) a GatewayError.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
