package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Header is an optional request header pair for Do.
type Header struct{ Key, Value string }

// Bearer builds an Authorization header.
func Bearer(token string) Header {
	return Header{Key: "Authorization", Value: "Bearer " + token}
}

// DoJSON sends body (marshalled to JSON unless nil) to handler.
func DoJSON(t *testing.T, handler http.Handler, method, target string, body any, headers ...Header) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return do(handler, req, headers)
}

// DoForm posts form values to handler the way a browser would.
func DoForm(t *testing.T, handler http.Handler, method, target string, form url.Values, headers ...Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(handler, req, headers)
}

func do(handler http.Handler, req *http.Request, headers []Header) *httptest.ResponseRecorder {
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON decodes the recorded body into a generic map.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}
