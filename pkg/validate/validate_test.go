package validate_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ultranet/catalog/pkg/validate"
)

var productRules = validate.Rules{
	{Field: "name", Rules: "required|string|max:255"},
	{Field: "category_id", Rules: "required|integer|exists:categories,id"},
	{Field: "description", Rules: "nullable|string"},
	{Field: "price", Rules: "required|numeric|min:0"},
	{Field: "stock", Rules: "required|integer|min:0"},
	{Field: "enabled", Rules: "boolean"},
}

func existsIn(ids ...int64) validate.ExistsFunc {
	return func(_ context.Context, _, _ string, value any) (bool, error) {
		n, ok := validate.Int(value)
		if !ok {
			return false, nil
		}
		for _, id := range ids {
			if id == n {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestEmptyPayloadReportsRequiredFields(t *testing.T) {
	v := validate.New(productRules, nil).WithExists(existsIn(1))
	errs, err := v.Validate(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, field := range []string{"name", "category_id", "price", "stock"} {
		if !errs.Has(field) {
			t.Errorf("expected %s to be required", field)
		}
	}
	if len(errs) != 4 {
		t.Errorf("expected exactly 4 failing fields, got %v", errs)
	}
	if got := errs.First("category_id"); got != "The category id field is required." {
		t.Errorf("unexpected default message: %q", got)
	}
}

func TestRequiredAcceptsZero(t *testing.T) {
	v := validate.New(productRules, nil).WithExists(existsIn(1))
	errs, err := v.Validate(context.Background(), map[string]any{
		"name":        "Widget",
		"category_id": json.Number("1"),
		"price":       json.Number("0"),
		"stock":       json.Number("0"),
		"enabled":     false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestRulesStopAtFirstFailure(t *testing.T) {
	v := validate.New(productRules, validate.Messages{
		"price.numeric": "Price must be a number",
	}).WithExists(existsIn(1))

	errs, _ := v.Validate(context.Background(), map[string]any{
		"name":        "Widget",
		"category_id": "1",
		"price":       "abc",
		"stock":       "-3",
	})

	if got := errs["price"]; len(got) != 1 || got[0] != "Price must be a number" {
		t.Errorf("unexpected price errors: %v", got)
	}
	if got := errs.First("stock"); got != "The stock field must be at least 0." {
		t.Errorf("unexpected stock error: %q", got)
	}
}

func TestMaxCountsCharacters(t *testing.T) {
	v := validate.New(validate.Rules{{Field: "name", Rules: "required|string|max:3"}}, nil)

	errs, _ := v.Validate(context.Background(), map[string]any{"name": "ñañ"})
	if validate.HasErrors(errs) {
		t.Errorf("three runes should pass max:3, got %v", errs)
	}

	errs, _ = v.Validate(context.Background(), map[string]any{"name": "abcd"})
	if got := errs.First("name"); got != "The name field must not be greater than 3 characters." {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestNullableSkipsBlankValues(t *testing.T) {
	v := validate.New(productRules[2:3], nil)

	for _, value := range []any{nil, ""} {
		errs, _ := v.Validate(context.Background(), map[string]any{"description": value})
		if validate.HasErrors(errs) {
			t.Errorf("nullable should accept %#v, got %v", value, errs)
		}
	}

	errs, _ := v.Validate(context.Background(), map[string]any{"description": json.Number("5")})
	if !errs.Has("description") {
		t.Error("expected description to be rejected as non-string")
	}
}

func TestSometimesSkipsAbsentKeys(t *testing.T) {
	v := validate.New(validate.Rules{
		{Field: "name", Rules: "sometimes|required|string|max:255"},
		{Field: "price", Rules: "sometimes|required|numeric|min:0"},
	}, nil)

	errs, _ := v.Validate(context.Background(), map[string]any{"price": "9.99"})
	if validate.HasErrors(errs) {
		t.Errorf("expected absent name to be skipped, got %v", errs)
	}

	errs, _ = v.Validate(context.Background(), map[string]any{"name": nil})
	if !errs.Has("name") {
		t.Error("a present null name must still be required")
	}
}

func TestBooleanSpellings(t *testing.T) {
	v := validate.New(validate.Rules{{Field: "enabled", Rules: "boolean"}}, nil)

	for _, ok := range []any{true, false, "1", "0", "true", "false", json.Number("1"), 0} {
		errs, _ := v.Validate(context.Background(), map[string]any{"enabled": ok})
		if validate.HasErrors(errs) {
			t.Errorf("expected %#v to be accepted", ok)
		}
	}
	errs, _ := v.Validate(context.Background(), map[string]any{"enabled": "yes"})
	if !errs.Has("enabled") {
		t.Error(`expected "yes" to be rejected`)
	}
}

func TestWildcardElements(t *testing.T) {
	v := validate.New(validate.Rules{
		{Field: "ids", Rules: "required|array|min:1"},
		{Field: "ids.*", Rules: "required|integer|exists:products,id"},
	}, validate.Messages{
		"ids.required":  "Please select at least one product",
		"ids.*.exists":  "One or more selected products do not exist",
		"ids.*.integer": "Invalid product ID",
	}).WithExists(existsIn(1, 2))

	errs, err := v.Validate(context.Background(), map[string]any{
		"ids": []any{json.Number("1"), json.Number("99"), "x"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errs.Has("ids.0") {
		t.Errorf("ids.0 exists, got %v", errs["ids.0"])
	}
	if got := errs.First("ids.1"); got != "One or more selected products do not exist" {
		t.Errorf("unexpected ids.1 message: %q", got)
	}
	if got := errs.First("ids.2"); got != "Invalid product ID" {
		t.Errorf("unexpected ids.2 message: %q", got)
	}

	errs, _ = v.Validate(context.Background(), map[string]any{"ids": []any{}})
	if got := errs.First("ids"); got != "Please select at least one product" {
		t.Errorf("unexpected empty ids message: %q", got)
	}
}

func TestExistsLookupErrorIsReturned(t *testing.T) {
	boom := errors.New("db down")
	v := validate.New(productRules[1:2], nil).WithExists(func(context.Context, string, string, any) (bool, error) {
		return false, boom
	})

	_, err := v.Validate(context.Background(), map[string]any{"category_id": 1})
	if !errors.Is(err, boom) {
		t.Errorf("expected lookup error, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	v := validate.New(productRules, validate.Messages{"name.required": "Product name is required"}).
		WithExists(existsIn())

	errs, _ := v.Validate(context.Background(), map[string]any{})
	if got := v.Summary(errs); got != "Product name is required (and 3 more errors)" {
		t.Errorf("unexpected summary: %q", got)
	}

	one := validate.Errors{}
	one.Add("price", "The price field is required.")
	if got := v.Summary(one); got != "The price field is required." {
		t.Errorf("unexpected summary: %q", got)
	}

	one.Add("stock", "The stock field is required.")
	if got := v.Summary(one); got != "The price field is required. (and 1 more error)" {
		t.Errorf("unexpected summary: %q", got)
	}
}

func TestUnknownRulePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown rule")
		}
	}()
	validate.New(validate.Rules{{Field: "x", Rules: "required|shiny"}}, nil)
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"nullable,in=admin,editor,max=10"`
	Attempts int    `json:"attempts" validate:"required,min=0"`
}

func TestStructTags(t *testing.T) {
	errs := validate.Struct(loginInput{Email: "admin@ultranet.com", Password: "password"})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got %v", errs)
	}

	errs = validate.Struct(&loginInput{Email: "nope", Role: "owner"})
	for _, field := range []string{"email", "password", "role"} {
		if !errs.Has(field) {
			t.Errorf("expected %s to fail", field)
		}
	}
	if errs.Has("attempts") {
		t.Error("zero attempts satisfies required")
	}
}

func TestStructInKeepsValueList(t *testing.T) {
	errs := validate.Struct(loginInput{Email: "a@b.co", Password: "secret1", Role: "editor"})
	if errs.Has("role") {
		t.Errorf("editor is in the allowed list, got %v", errs["role"])
	}
}
