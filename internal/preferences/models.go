package preferences

import "time"

// The fixed set of preference keys. Each key is stored as its own small
// document so adding one value never rewrites sibling keys.
const (
	KeyDietary     = "dietary"
	KeyAllergies   = "allergies"
	KeyCuisines    = "cuisines"
	KeyKitchenware = "kitchenware"
	KeyDislikes    = "dislikes"
	KeyCookingPref = "cookingpref"
)

var knownKeys = []string{KeyDietary, KeyAllergies, KeyCuisines, KeyKitchenware, KeyDislikes, KeyCookingPref}

// KnownKeys returns the fixed key set, in stable order.
func KnownKeys() []string { return append([]string(nil), knownKeys...) }

// IsKnown reports whether key belongs to the fixed set.
func IsKnown(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Doc is one stored preference document: a list of free-text values under a
// single key.
type Doc struct {
	UserID    string    `json:"-" bson:"userId"`
	Key       string    `json:"key" bson:"key"`
	Items     []string  `json:"items" bson:"items"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Preferences is the fixed-shape merged view of all preference documents.
// Missing documents show up as empty lists, never nil checks for callers.
type Preferences struct {
	Dietary     []string `json:"dietary"`
	Allergies   []string `json:"allergies"`
	Cuisines    []string `json:"cuisines"`
	Kitchenware []string `json:"kitchenware"`
	Dislikes    []string `json:"dislikes"`
	CookingPref []string `json:"cookingpref"`
}

// Fold merges a set of preference documents into the fixed-shape record.
// Unknown keys are ignored; keys with no document default to empty lists.
func Fold(docs []*Doc) Preferences {
	p := Preferences{
		Dietary:     []string{},
		Allergies:   []string{},
		Cuisines:    []string{},
		Kitchenware: []string{},
		Dislikes:    []string{},
		CookingPref: []string{},
	}
	for _, d := range docs {
		items := append([]string(nil), d.Items...)
		switch d.Key {
		case KeyDietary:
			p.Dietary = items
		case KeyAllergies:
			p.Allergies = items
		case KeyCuisines:
			p.Cuisines = items
		case KeyKitchenware:
			p.Kitchenware = items
		case KeyDislikes:
			p.Dislikes = items
		case KeyCookingPref:
			p.CookingPref = items
		}
	}
	return p
}
