package validate

import "strings"

// defaults are keyed by rule, or "rule.kind" for size rules.
var defaults = map[string]string{
	"required":    "The :attribute field is required.",
	"string":      "The :attribute field must be a string.",
	"numeric":     "The :attribute field must be a number.",
	"integer":     "The :attribute field must be an integer.",
	"boolean":     "The :attribute field must be true or false.",
	"array":       "The :attribute field must be an array.",
	"email":       "The :attribute field must be a valid email address.",
	"in":          "The selected :attribute is invalid.",
	"exists":      "The selected :attribute is invalid.",
	"min.numeric": "The :attribute field must be at least :min.",
	"min.string":  "The :attribute field must be at least :min characters.",
	"min.array":   "The :attribute field must have at least :min items.",
	"max.numeric": "The :attribute field must not be greater than :max.",
	"max.string":  "The :attribute field must not be greater than :max characters.",
	"max.array":   "The :attribute field must not have more than :max items.",
}

func defaultMessage(ruleName, kind string) string {
	if msg, ok := defaults[ruleName+"."+kind]; ok {
		return msg
	}
	if msg, ok := defaults[ruleName]; ok {
		return msg
	}
	return "The :attribute field is invalid."
}

func render(tmpl, key string, r rule) string {
	replacer := strings.NewReplacer(
		":attribute", attribute(key),
		":min", r.param(0),
		":max", r.param(0),
		":values", strings.Join(r.params, ", "),
	)
	return replacer.Replace(tmpl)
}

// attribute turns "category_id" into "category id".
func attribute(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
