package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type rule struct {
	name   string
	params []string
}

func (r rule) param(i int) string {
	if i < len(r.params) {
		return r.params[i]
	}
	return ""
}

var knownRules = map[string]bool{
	"required": true, "sometimes": true, "nullable": true,
	"string": true, "numeric": true, "integer": true, "boolean": true,
	"array": true, "email": true, "min": true, "max": true, "in": true,
	"exists": true,
}

// parsePipe parses "required|max:255|exists:categories,id".
func parsePipe(s string) ([]rule, error) {
	var out []rule
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, params, _ := strings.Cut(part, ":")
		r, err := newRule(name, params)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func newRule(name, params string) (rule, error) {
	name = strings.TrimSpace(name)
	if !knownRules[name] {
		return rule{}, fmt.Errorf("unknown rule %q", name)
	}
	r := rule{name: name}
	if params != "" {
		for _, p := range strings.Split(params, ",") {
			r.params = append(r.params, strings.TrimSpace(p))
		}
	}
	if (name == "min" || name == "max") && len(r.params) != 1 {
		return rule{}, fmt.Errorf("rule %q needs one parameter", name)
	}
	if name == "exists" && r.param(0) == "" {
		return rule{}, fmt.Errorf("rule exists needs a table")
	}
	return r, nil
}

func hasRule(rules []rule, name string) bool {
	for _, r := range rules {
		if r.name == name {
			return true
		}
	}
	return false
}

// passesStatic evaluates every rule that needs no I/O.
func passesStatic(r rule, value any, numeric bool) (bool, error) {
	switch r.name {
	case "required":
		return !isEmpty(value), nil
	case "string":
		_, ok := value.(string)
		return ok, nil
	case "numeric":
		_, ok := Float(value)
		return ok, nil
	case "integer":
		_, ok := Int(value)
		return ok, nil
	case "boolean":
		_, ok := Bool(value)
		return ok, nil
	case "array":
		_, ok := asSlice(value)
		return ok, nil
	case "email":
		s, ok := value.(string)
		return ok && emailRE.MatchString(s), nil
	case "min", "max":
		limit, err := strconv.ParseFloat(r.param(0), 64)
		if err != nil {
			return false, fmt.Errorf("bad %s parameter %q", r.name, r.param(0))
		}
		size, ok := sizeOf(value, numeric)
		if !ok {
			return false, nil
		}
		if r.name == "min" {
			return size >= limit, nil
		}
		return size <= limit, nil
	case "in":
		raw := scalarString(value)
		for _, allowed := range r.params {
			if raw == allowed {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("rule %q cannot be evaluated here", r.name)
}

// ─── Value helpers ────────────────────────────────────────────────────────────

var (
	emailRE   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	integerRE = regexp.MustCompile(`^[+-]?\d+$`)
)

func isNull(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// isEmpty is the "required" notion of missing. Zero and false are values.
func isEmpty(v any) bool {
	if isNull(v) {
		return true
	}
	if items, ok := asSlice(v); ok {
		return len(items) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sizeKind(v any, numeric bool) string {
	if numeric {
		return "numeric"
	}
	if _, ok := asSlice(v); ok {
		return "array"
	}
	if _, ok := v.(string); ok {
		return "string"
	}
	if _, ok := Float(v); ok {
		return "numeric"
	}
	return "string"
}

func sizeOf(v any, numeric bool) (float64, bool) {
	switch sizeKind(v, numeric) {
	case "numeric":
		return Float(v)
	case "array":
		items, _ := asSlice(v)
		return float64(len(items)), true
	default:
		s, ok := v.(string)
		return float64(utf8.RuneCountInString(s)), ok
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "1"
		}
		return "0"
	}
	return fmt.Sprint(v)
}

// Float converts numbers and numeric strings.
func Float(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int converts whole numbers and integer strings.
func Int(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.Abs(t) > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return Int(f)
	case string:
		s := strings.TrimSpace(t)
		if !integerRE.MatchString(s) {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Bool converts the accepted boolean spellings.
func Bool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true":
			return true, true
		case "0", "false":
			return false, true
		}
		return false, false
	}
	if n, ok := Int(v); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}
