package recipes

import "time"

// Saved is one entry in the likedRecipes or savedRecipes collection: a
// lightweight pointer to a recipe in the external provider, plus enough
// metadata to render a card offline.
type Saved struct {
	UserID   string    `json:"-" bson:"userId"`
	RecipeID string    `json:"recipeId" bson:"recipeId"`
	Title    string    `json:"title" bson:"title"`
	Image    string    `json:"image" bson:"image"`
	AddedAt  time.Time `json:"addedAt" bson:"addedAt"`
}

// Summary is one search hit from the recipe metadata provider.
type Summary struct {
	ID                    int    `json:"id"`
	Title                 string `json:"title"`
	Image                 string `json:"image"`
	UsedIngredientCount   int    `json:"usedIngredientCount"`
	MissedIngredientCount int    `json:"missedIngredientCount"`
}

// Detail is the per-recipe detail payload from the provider.
type Detail struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Image          string `json:"image"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
	SourceURL      string `json:"sourceUrl"`
	Instructions   string `json:"instructions"`
}
