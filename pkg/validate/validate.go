// Package validate provides Laravel-style validation for request input.
//
// Rules are declared per field in the pipe syntax and evaluated in order;
// a field stops at its first failing rule:
//
//	rules := validate.Rules{
//	    {Field: "name", Rules: "required|string|max:255"},
//	    {Field: "category_id", Rules: "required|integer|exists:categories,id"},
//	    {Field: "ids", Rules: "required|array|min:1"},
//	    {Field: "ids.*", Rules: "required|integer|exists:products,id"},
//	}
//	v := validate.New(rules, validate.Messages{"name.required": "Product name is required"}).
//	    WithExists(checker)
//	errs, err := v.Validate(ctx, input)
//
// Supported rules:
//
//	required            key present, not null, not blank, not an empty array
//	sometimes           skip the field entirely when its key is absent
//	nullable            skip remaining rules when the value is null or ""
//	string              value is a string
//	numeric             any number, or a numeric string
//	integer             whole number, or an integer string
//	boolean             true, false, 1, 0, "1", "0", "true", "false"
//	array               a list
//	email               valid email address
//	min:N / max:N       value (numeric fields), item count (arrays) or length
//	in:a,b,c            value is one of the listed items
//	exists:table,col    a row with col = value exists (see ExistsFunc)
//
// "field.*" applies its rules to every element of the field's array; errors
// are keyed "field.0", "field.1", ...
//
// Custom messages are keyed "field.rule" (or "field.*.rule" for elements) and
// fall back to default templates with :attribute, :min, :max and :values
// placeholders.
package validate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ─── Public types ─────────────────────────────────────────────────────────────

// Errors maps each failing field to its messages.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

// Has reports whether field failed.
func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Count returns the total number of messages.
func (e Errors) Count() int {
	n := 0
	for _, msgs := range e {
		n += len(msgs)
	}
	return n
}

// HasErrors returns true when errs is non-empty.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

// Rule binds a field (or "field.*") to its pipe-separated rules.
type Rule struct {
	Field string
	Rules string
}

// Rules is an ordered rule set.
type Rules []Rule

// Messages overrides default messages, keyed "field.rule".
type Messages map[string]string

// ExistsFunc reports whether a row with column = value exists in table.
type ExistsFunc func(ctx context.Context, table, column string, value any) (bool, error)

// Validator evaluates one rule set.
type Validator struct {
	rules    Rules
	parsed   [][]rule
	messages Messages
	exists   ExistsFunc
}

// New compiles rules. It panics on a malformed rule string since rule sets
// are declared in code.
func New(rules Rules, messages Messages) *Validator {
	v := &Validator{rules: rules, messages: messages, parsed: make([][]rule, len(rules))}
	for i, r := range rules {
		parsed, err := parsePipe(r.Rules)
		if err != nil {
			panic(fmt.Sprintf("validate: field %q: %v", r.Field, err))
		}
		v.parsed[i] = parsed
	}
	return v
}

// WithExists returns a copy of v that resolves exists rules through fn.
func (v *Validator) WithExists(fn ExistsFunc) *Validator {
	cp := *v
	cp.exists = fn
	return &cp
}

// Validate runs the rule set against data. The returned error is non-nil
// only when a lookup (exists) fails; rule failures are reported in Errors.
func (v *Validator) Validate(ctx context.Context, data map[string]any) (Errors, error) {
	errs := Errors{}

	for i, r := range v.rules {
		rules := v.parsed[i]

		parent, isWildcard := strings.CutSuffix(r.Field, ".*")
		if !isWildcard {
			value, present := data[r.Field]
			f := field{key: r.Field, pattern: r.Field, value: value, present: present}
			if err := v.check(ctx, f, rules, errs); err != nil {
				return nil, err
			}
			continue
		}

		items, ok := asSlice(data[parent])
		if !ok {
			continue
		}
		for idx, item := range items {
			f := field{
				key:     parent + "." + strconv.Itoa(idx),
				pattern: r.Field,
				value:   item,
				present: true,
			}
			if err := v.check(ctx, f, rules, errs); err != nil {
				return nil, err
			}
		}
	}

	return errs, nil
}

// Summary renders the headline message for errs: the first message in rule
// order, followed by a count of the rest.
func (v *Validator) Summary(errs Errors) string {
	var order []string
	for _, r := range v.rules {
		order = append(order, v.keysFor(r.Field, errs)...)
	}
	return Summarize(errs, order)
}

// Summarize is Summary for errors without a rule set: the first message of
// the first key in order that failed (sorted keys when none did), followed
// by " (and N more errors)".
func Summarize(errs Errors, order []string) string {
	first := ""
	for _, key := range order {
		if msg := errs.First(key); msg != "" {
			first = msg
			break
		}
	}
	if first == "" {
		for _, key := range sortedKeys(errs) {
			if msg := errs.First(key); msg != "" {
				first = msg
				break
			}
		}
	}

	rest := errs.Count() - 1
	switch {
	case rest <= 0:
		return first
	case rest == 1:
		return first + " (and 1 more error)"
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}

// keysFor lists the error keys produced by a rule field, in element order.
func (v *Validator) keysFor(fieldName string, errs Errors) []string {
	parent, isWildcard := strings.CutSuffix(fieldName, ".*")
	if !isWildcard {
		return []string{fieldName}
	}

	type indexed struct {
		key string
		idx int
	}
	var found []indexed
	for key := range errs {
		rest, ok := strings.CutPrefix(key, parent+".")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil {
			found = append(found, indexed{key: key, idx: n})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].idx < found[j].idx })

	keys := make([]string, len(found))
	for i, f := range found {
		keys[i] = f.key
	}
	return keys
}

// ─── Evaluation ───────────────────────────────────────────────────────────────

type field struct {
	key     string // error key, e.g. "ids.2"
	pattern string // rule key, e.g. "ids.*"
	value   any
	present bool
}

func (v *Validator) check(ctx context.Context, f field, rules []rule, errs Errors) error {
	if hasRule(rules, "sometimes") && !f.present {
		return nil
	}
	if hasRule(rules, "nullable") && isNull(f.value) {
		return nil
	}

	numeric := hasRule(rules, "numeric") || hasRule(rules, "integer")

	for _, r := range rules {
		if r.name == "sometimes" || r.name == "nullable" {
			continue
		}
		// Only presence rules look at absent or null values.
		if r.name != "required" && (!f.present || isNull(f.value)) {
			continue
		}

		ok, err := v.passes(ctx, r, f.value, numeric)
		if err != nil {
			return fmt.Errorf("validate: %s.%s: %w", f.key, r.name, err)
		}
		if !ok {
			errs.Add(f.key, v.message(f, r, sizeKind(f.value, numeric)))
			return nil
		}
	}
	return nil
}

func (v *Validator) passes(ctx context.Context, r rule, value any, numeric bool) (bool, error) {
	if r.name == "exists" {
		if v.exists == nil {
			return false, fmt.Errorf("no ExistsFunc configured")
		}
		table, column := r.param(0), r.param(1)
		if column == "" {
			column = "id"
		}
		return v.exists(ctx, table, column, value)
	}
	return passesStatic(r, value, numeric)
}

func (v *Validator) message(f field, r rule, kind string) string {
	tmpl, ok := v.messages[f.key+"."+r.name]
	if !ok && f.pattern != f.key {
		tmpl, ok = v.messages[f.pattern+"."+r.name]
	}
	if !ok {
		tmpl = defaultMessage(r.name, kind)
	}
	return render(tmpl, f.key, r)
}

func sortedKeys(errs Errors) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
