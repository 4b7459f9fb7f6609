package categorize

import (
	"strings"

	"github.com/Veraticus/expense-flow/internal/model"
)

// Vocabulary resolves category names returned by the oracle to the user's
// canonical names. Exact matches win; otherwise a case-insensitive match is
// accepted only when it is unambiguous.
type Vocabulary struct {
	exact  map[string]struct{}
	folded map[string]string
}

// NewVocabulary builds a vocabulary from the active categories. Archived
// categories are ignored.
func NewVocabulary(categories []model.Category) Vocabulary {
	v := Vocabulary{
		exact:  make(map[string]struct{}, len(categories)),
		folded: make(map[string]string, len(categories)),
	}

	ambiguous := make(map[string]bool)
	for _, cat := range categories {
		if cat.IsArchived || cat.Name == "" {
			continue
		}
		v.exact[cat.Name] = struct{}{}

		key := strings.ToLower(cat.Name)
		if existing, ok := v.folded[key]; ok && existing != cat.Name {
			ambiguous[key] = true
			continue
		}
		v.folded[key] = cat.Name
	}
	for key := range ambiguous {
		delete(v.folded, key)
	}

	return v
}

// Resolve returns the canonical name for name, or false when it does not name
// a known category.
func (v Vocabulary) Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if _, ok := v.exact[name]; ok {
		return name, true
	}
	canonical, ok := v.folded[strings.ToLower(name)]
	return canonical, ok
}

// Len reports the number of known categories.
func (v Vocabulary) Len() int {
	return len(v.exact)
}
