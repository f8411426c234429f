package validate

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Struct validates the exported fields of v that carry a `validate` tag.
// Tags use comma-separated rules with "=" parameters:
//
//	type LoginInput struct {
//	    Email    string `json:"email"    validate:"required,email"`
//	    Role     string `json:"role"     validate:"nullable,in=admin,editor"`
//	    Password string `json:"password" validate:"required,min=8"`
//	}
//
// Unlike the map validator, struct fields are always present, so "sometimes"
// and "exists" are not available here. Numeric zero satisfies "required".
func Struct(v any) Errors {
	errs := Errors{}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	check := &Validator{}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		rules, err := parseTag(tag)
		if err != nil {
			panic(fmt.Sprintf("validate: %s.%s: %v", rt.Name(), sf.Name, err))
		}

		name := jsonFieldName(sf)
		f := field{key: name, pattern: name, value: fieldValue(rv.Field(i)), present: true}
		if err := check.check(context.Background(), f, rules, errs); err != nil {
			panic(err)
		}
	}

	return errs
}

func fieldValue(v reflect.Value) any {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

func parseTag(tag string) ([]rule, error) {
	var out []rule
	for _, token := range splitRules(tag) {
		name, params, _ := strings.Cut(strings.TrimSpace(token), "=")
		if name == "exists" || name == "sometimes" {
			return nil, fmt.Errorf("rule %q is not supported in struct tags", name)
		}
		r, err := newRule(name, params)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// splitRules splits a tag on commas while keeping the comma-separated values
// of "in=" together:
// "required,in=admin,user,max=100" → ["required", "in=admin,user", "max=100"].
func splitRules(tag string) []string {
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam && current.String() == "in=" {
				inParam = true
			}
			continue
		}
		if inParam && !looksLikeNewRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

// looksLikeNewRule reports whether s starts with a rule keyword rather than
// continuing an "in=" value list.
func looksLikeNewRule(s string) bool {
	name, _, _ := strings.Cut(s, ",")
	name, _, _ = strings.Cut(name, "=")
	return knownRules[name]
}
