package testkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/pkg/testkit"
)

var testHandler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/ping":
		json.NewEncoder(w).Encode(map[string]any{"message": "pong", "time": time.Now()}) //nolint:errcheck
	case "/echo":
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Unauthenticated."}`)) //nolint:errcheck
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{"data": body}) //nolint:errcheck
	default:
		w.WriteHeader(http.StatusNotFound)
	}
})

func TestRunDir(t *testing.T) {
	testkit.RunDir(t, testHandler, "testdata", testkit.WithToken("secret"))
}

func TestRunSingle(t *testing.T) {
	testkit.Run(t, testHandler, "testdata/01_ping.json")
}

func TestLoadScenarioDefaults(t *testing.T) {
	s, err := testkit.LoadScenario("testdata/01_ping.json")
	require.NoError(t, err)

	assert.Equal(t, "GET", s.RequestMethod)
	assert.Equal(t, []string{"time"}, s.IgnoreFields)
	assert.Contains(t, s.ResponseBodyPath(), "ping_res.json")
	assert.Empty(t, s.RequestBodyPath())
}

func TestDiffJSON(t *testing.T) {
	exp := map[string]any{"data": []any{map[string]any{"id": 1.0}}, "message": "ok"}
	act := map[string]any{"data": []any{map[string]any{"id": 2.0}}, "extra": true}

	diffs := testkit.DiffJSON("", exp, act)
	assert.Len(t, diffs, 3)
}

func TestDoHelpers(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"method": r.Method,
			"name":   r.PostForm.Get("name"),
			"auth":   r.Header.Get("Authorization"),
		})
	})

	rec := testkit.DoForm(t, h, http.MethodPost, "/", url.Values{"name": {"Books"}})
	assert.Equal(t, "Books", testkit.DecodeJSON(t, rec)["name"])

	rec = testkit.DoJSON(t, h, http.MethodGet, "/", nil, testkit.Bearer("tok"))
	assert.Equal(t, "Bearer tok", testkit.DecodeJSON(t, rec)["auth"])
	assert.IsType(t, &httptest.ResponseRecorder{}, rec)
}

type widget struct {
	ID   uint
	Name string
}

func TestNewDBIsolated(t *testing.T) {
	db := testkit.NewDB(t, &widget{})
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)

	var n int64
	require.NoError(t, db.Model(&widget{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	t.Run("fresh database", func(t *testing.T) {
		other := testkit.NewDB(t, &widget{})
		var m int64
		require.NoError(t, other.Model(&widget{}).Count(&m).Error)
		assert.Zero(t, m)
	})
}
