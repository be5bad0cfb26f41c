package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/model"
)

// ChatGateway implements RecipeGateway over an OpenAI-compatible
// chat-completions endpoint. The three operations differ only in prompt,
// response schema and whether an image part is attached.
type ChatGateway struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewChatGateway creates a gateway from the loaded configuration.
func NewChatGateway(cfg *config.Config) *ChatGateway {
	return &ChatGateway{
		apiKey: cfg.LLMAPIKey,
		apiURL: cfg.LLMAPIURL,
		model:  cfg.LLMModel,
		client: &http.Client{},
	}
}

// chatMessage is a role-tagged message. Content is either a plain string
// or a []contentPart when an image is attached.
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// call sends the messages prefixed with a system message that pins the
// expected JSON shape, then parses the reply content into out. Every
// failure path returns a *GatewayError.
func (g *ChatGateway) call(ctx context.Context, op string, messages []chatMessage, schema string, out interface{}) error {
	system := chatMessage{
		Role: "system",
		Content: "You are an AI assistant capable of analyzing images and generating recipes.\n" +
			"IMPORTANT: You must reply in VALID JSON format only.\n" +
			"Do not include any explanation, apologize, or use markdown code blocks (like ```json).\n" +
			"Just return the raw JSON string.\n\n" +
			"The expected JSON structure is:\n" + schema,
	}

	reqBody := chatRequest{
		Model:       g.model,
		Messages:    append([]chatMessage{system}, messages...),
		MaxTokens:   4000,
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &GatewayError{Op: op, Err: fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return &GatewayError{Op: op, Err: fmt.Errorf("empty response from API")}
	}

	content := stripJSONFences(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return &GatewayError{Op: op, Err: fmt.Errorf("invalid JSON received from API: %w", err)}
	}
	return nil
}

// stripJSONFences removes markdown code fences some models wrap around
// JSON despite instructions.
func stripJSONFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func langInstruction(lang model.Language) string {
	if lang == model.LangChinese {
		return "IMPORTANT: Output all text content in Simplified Chinese (zh-CN)."
	}
	return "IMPORTANT: Output all text content in English."
}

// identifyPayload is the wire shape of the identify response.
type identifyPayload struct {
	Ingredients []struct {
		Name  string    `json:"name"`
		Box2D []float64 `json:"box_2d"`
	} `json:"ingredients"`
}

// Identify implements RecipeGateway.
func (g *ChatGateway) Identify(ctx context.Context, imageDataURL string, lang model.Language) ([]model.DetectedIngredient, error) {
	nameLang := "in English"
	if lang == model.LangChinese {
		nameLang = "in Simplified Chinese (zh-CN)"
	}

	prompt := fmt.Sprintf(`Identify the main edible ingredients in this image.
Return a list of ingredients with their 2D bounding boxes.

1. 'name': Common name of the ingredient %s.
2. 'box_2d': [ymin, xmin, ymax, xmax] (0-1).

Guidelines:
- ACCURACY IS CRITICAL. Identify ingredients precisely.
- Group similar items: If there are multiple items of the same kind return ONE bounding box for the whole group.
- Reduce clutter: Avoid overlapping boxes for the same object.
- Only identify food ingredients. Ignore background objects.`, nameLang)

	schema := `{
  "ingredients": [
    {
      "name": "string (name of ingredient)",
      "box_2d": [ymin, xmin, ymax, xmax] (numbers 0-1)
    }
  ]
}`

	messages := []chatMessage{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: imageDataURL}},
		},
	}}

	var payload identifyPayload
	if err := g.call(ctx, "identify", messages, schema, &payload); err != nil {
		return nil, err
	}

	ingredients := make([]model.DetectedIngredient, 0, len(payload.Ingredients))
	for _, ing := range payload.Ingredients {
		detected := model.DetectedIngredient{Name: ing.Name}
		// The service may omit or invert boxes; normalize here so no
		// consumer has to care.
		if len(ing.Box2D) == 4 {
			box := model.BoundingBox{ing.Box2D[0], ing.Box2D[1], ing.Box2D[2], ing.Box2D[3]}.Normalize()
			detected.Box = &box
		}
		ingredients = append(ingredients, detected)
	}
	return ingredients, nil
}

// recipePayload is the wire shape of one generated recipe. ID, Timestamp,
// Comments and IsFavorite are assigned by the workflow, never by the
// gateway.
type recipePayload struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	IngredientsDetected []string `json:"ingredientsDetected"`
	Steps               []string `json:"steps"`
	CookingTime         string   `json:"cookingTime"`
	Difficulty          string   `json:"difficulty"`
	ChefComment         string   `json:"chefComment"`
	Tags                []string `json:"tags"`
}

func (p recipePayload) toRecipe() model.Recipe {
	return model.Recipe{
		Title:               p.Title,
		Description:         p.Description,
		IngredientsDetected: p.IngredientsDetected,
		Steps:               p.Steps,
		CookingTime:         p.CookingTime,
		Difficulty:          p.Difficulty,
		ChefComment:         p.ChefComment,
		Tags:                p.Tags,
	}
}

const michelinPersona = "You are a world-renowned 3-star Michelin Chef. Use flowery, expensive-sounding culinary terms."

const hellPersona = "You are a chaotic 'Dark Cuisine' Chef (The Hell Kitchen Alchemist). Be dramatic, funny, and unconventional."

const singleRecipeSchema = `{
  "title": "string (creative name of the dish)",
  "description": "string (short engaging description)",
  "ingredientsDetected": ["string (ingredients used)"],
  "steps": ["string (step by step instructions)"],
  "cookingTime": "string",
  "difficulty": "string",
  "chefComment": "string (chef's specific comment)"
}`

// GenerateStyled implements RecipeGateway.
func (g *ChatGateway) GenerateStyled(ctx context.Context, imageDataURL string, ingredients []string, mode model.ChefMode, lang model.Language) (model.Recipe, error) {
	persona := michelinPersona
	if mode == model.ModeHell {
		persona = hellPersona
	}

	prompt := fmt.Sprintf(`%s
The user wants to cook a dish using MAINLY these ingredients found in their fridge: [%s].
Analyze the provided image for context (quantity, quality) but focus on the selected ingredients.
Create a recipe.
%s`, persona, strings.Join(ingredients, ", "), langInstruction(lang))

	messages := []chatMessage{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: imageDataURL}},
		},
	}}

	var payload recipePayload
	if err := g.call(ctx, "generate", messages, singleRecipeSchema, &payload); err != nil {
		return model.Recipe{}, err
	}
	return payload.toRecipe(), nil
}

// popularBatchSize is how many recipes a popular search asks for.
const popularBatchSize = 4

const searchSchema = `{
  "recipes": [
    {
      "title": "string",
      "description": "string",
      "ingredientsDetected": ["string"],
      "steps": ["string"],
      "cookingTime": "string",
      "difficulty": "string",
      "chefComment": "string"
    }
  ]
}`

// SearchPopular implements RecipeGateway.
func (g *ChatGateway) SearchPopular(ctx context.Context, ingredients []string, lang model.Language) ([]model.Recipe, error) {
	prompt := fmt.Sprintf(`Act as a search engine and recipe aggregator.
Find %d DISTINCT, POPULAR, and PRACTICAL recipes that can be made primarily with these ingredients: [%s].
These should be normal, real-world recipes that people actually cook.
For each recipe, provide detailed steps, cooking time, and difficulty.
In the 'chefComment' field, provide a brief sentence about why this recipe is popular.
%s`, popularBatchSize, strings.Join(ingredients, ", "), langInstruction(lang))

	messages := []chatMessage{{
		Role:    "user",
		Content: []contentPart{{Type: "text", Text: prompt}},
	}}

	var payload struct {
		Recipes []recipePayload `json:"recipes"`
	}
	if err := g.call(ctx, "search", messages, searchSchema, &payload); err != nil {
		return nil, err
	}

	recipes := make([]model.Recipe, 0, len(payload.Recipes))
	for _, p := range payload.Recipes {
		recipes = append(recipes, p.toRecipe())
	}
	return recipes, nil
}
