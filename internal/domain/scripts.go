package domain

import (
	"fmt"
	"strings"
)

// ScriptCategories lists who a guilt-free script can be addressed to.
var ScriptCategories = []string{"partner", "kids", "boss", "in-laws", "friends"}

// Scripts is a generated set of short and long conversation scripts.
type Scripts struct {
	ShortScripts []string
	LongScripts  []string
}

// NormalizeScriptCategory lower-cases the category and rejects unknown values.
func NormalizeScriptCategory(raw string) (string, error) {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return "", fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	for _, c := range ScriptCategories {
		if c == category {
			return category, nil
		}
	}
	return "", fmt.Errorf("%w: invalid category", ErrInvalidInput)
}
