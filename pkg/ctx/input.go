package ctx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ultranet/catalog/config"
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/validate"
)

// Input decodes the request body into a generic payload for the validator.
// JSON bodies keep numbers as json.Number. Form bodies map "ids[]" style keys
// to slices. Strings are trimmed and blank strings become nil. The body is
// capped at MAX_BODY_BYTES.
func (c *Context) Input() (map[string]any, error) {
	if c.R.Body == nil {
		return map[string]any{}, nil
	}
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, config.MaxBodyBytes())

	mediaType, _, _ := mime.ParseMediaType(c.R.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return c.formInput()
	default:
		return c.jsonInput()
	}
}

func (c *Context) jsonInput() (map[string]any, error) {
	dec := json.NewDecoder(c.R.Body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, bodyError(err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	for k, v := range payload {
		payload[k] = normalize(v)
	}
	return payload, nil
}

func (c *Context) formInput() (map[string]any, error) {
	var err error
	if strings.HasPrefix(c.R.Header.Get("Content-Type"), "multipart/") {
		err = c.R.ParseMultipartForm(config.MaxBodyBytes())
	} else {
		err = c.R.ParseForm()
	}
	if err != nil {
		return nil, bodyError(err)
	}

	payload := make(map[string]any, len(c.R.PostForm))
	for key, values := range c.R.PostForm {
		switch {
		case key == "_method" || key == "_token":
			continue
		case strings.HasSuffix(key, "[]"):
			list := make([]any, 0, len(values))
			for _, v := range values {
				list = append(list, normalize(v))
			}
			payload[strings.TrimSuffix(key, "[]")] = list
		case len(values) > 0:
			payload[key] = normalize(values[len(values)-1])
		}
	}
	return payload, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	}
	return v
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.New("PAYLOAD_TOO_LARGE",
			fmt.Sprintf("Request body too large (max %d bytes).", maxErr.Limit),
			http.StatusRequestEntityTooLarge).WithError(err)
	}
	return apperr.BadRequest("Malformed request body.").WithError(err)
}

// Bind decodes the input into dest and runs its `validate` struct tags.
// Failures come back as an *apperr.AppError ready for Fail.
func (c *Context) Bind(dest any) error {
	payload, err := c.Input()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperr.BadRequest("Malformed request body.").WithError(err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperr.BadRequest("Malformed request body.").WithError(err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return apperr.Validation(validate.Summarize(errs, nil), errs)
	}
	return nil
}
