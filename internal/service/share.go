package service

import (
	"fmt"
	"strings"

	"github.com/fridgechef/backend/internal/model"
)

type shareLabels struct {
	cookingTime string
	difficulty  string
	ingredients string
	steps       string
	chefComment string
}

var shareLabelsByLanguage = map[model.Language]shareLabels{
	model.LangEnglish: {
		cookingTime: "Cooking time",
		difficulty:  "Difficulty",
		ingredients: "Ingredients",
		steps:       "Steps",
		chefComment: "Chef's comment",
	},
	model.LangChinese: {
		cookingTime: "烹饪时间",
		difficulty:  "难度",
		ingredients: "食材",
		steps:       "步骤",
		chefComment: "主厨点评",
	},
}

// ShareText renders a recipe as the plain-text summary behind the
// share-to-clipboard control.
func ShareText(r model.Recipe, lang model.Language) string {
	labels, ok := shareLabelsByLanguage[lang]
	if !ok {
		labels = shareLabelsByLanguage[model.LangEnglish]
	}

	var b strings.Builder
	b.WriteString(r.Title + "\n\n")
	if r.Description != "" {
		b.WriteString(r.Description + "\n\n")
	}
	fmt.Fprintf(&b, "%s: %s\n", labels.cookingTime, r.CookingTime)
	fmt.Fprintf(&b, "%s: %s\n\n", labels.difficulty, r.Difficulty)

	b.WriteString(labels.ingredients + ":\n")
	for _, ing := range r.IngredientsDetected {
		b.WriteString("- " + ing + "\n")
	}

	b.WriteString("\n" + labels.steps + ":\n")
	for i, step := range r.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	if r.ChefComment != "" {
		fmt.Fprintf(&b, "\n%s: %s\n", labels.chefComment, r.ChefComment)
	}
	return b.String()
}
