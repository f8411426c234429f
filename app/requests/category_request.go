package requests

import (
	"fmt"

	"github.com/ultranet/catalog/pkg/validate"
)

var (
	categoryRules = validate.Rules{
		{Field: "name", Rules: "required|string|max:255"},
	}

	categoryMessages = validate.Messages{
		"name.required": "Category name is required",
	}
)

// CleanCategory returns a copy of payload with markup stripped from name.
func CleanCategory(payload map[string]any) map[string]any {
	return cleanText(payload, "name")
}

// CategoryName reads the name of a cleaned, validated category payload.
func CategoryName(payload map[string]any) string {
	return fmt.Sprint(payload["name"])
}
