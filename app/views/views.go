// Package views renders the admin pages from embedded html/template files.
// Every page is parsed together with layout.html and executed as "layout".
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"sync"

	"github.com/ultranet/catalog/config"
)

//go:embed templates
var files embed.FS

var (
	once  sync.Once
	pages map[string]*template.Template
	err   error
)

var funcs = template.FuncMap{
	"appName": config.AppName,
	"add":     func(a, b int) int { return a + b },
	"sub":     func(a, b int) int { return a - b },
	"seq": func(from, to int) []int {
		var out []int
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
}

func load() {
	pages = map[string]*template.Template{}
	err = fs.WalkDir(files, "templates", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path == "templates/layout.html" || !strings.HasSuffix(path, ".html") {
			return nil
		}
		t, parseErr := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", path)
		if parseErr != nil {
			return fmt.Errorf("views: parse %s: %w", path, parseErr)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		pages[name] = t
		return nil
	})
}

// Render executes the named page ("products/index") with data.
func Render(name string, data *Page) ([]byte, error) {
	once.Do(load)
	if err != nil {
		return nil, err
	}
	t, ok := pages[name]
	if !ok {
		return nil, fmt.Errorf("views: unknown page %q", name)
	}

	var buf bytes.Buffer
	if execErr := t.ExecuteTemplate(&buf, "layout", data); execErr != nil {
		return nil, fmt.Errorf("views: render %s: %w", name, execErr)
	}
	return buf.Bytes(), nil
}

// Page is what every template receives.
type Page struct {
	Title      string
	User       string
	Success    string
	Failure    string
	Errors     map[string][]string
	OldInput   map[string]any
	Data       any
	ShowNavbar bool
}

// Error is the first message for field, or "".
func (p *Page) Error(field string) string {
	if msgs := p.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// HasError reports whether field failed validation.
func (p *Page) HasError(field string) bool {
	return p.Error(field) != ""
}

// Old is the flashed input for field, or fallback when nothing was flashed.
func (p *Page) Old(field string, fallback any) string {
	if p.OldInput != nil {
		if v, ok := p.OldInput[field]; ok {
			if v == nil {
				return ""
			}
			return fmt.Sprint(v)
		}
	}
	if fallback == nil {
		return ""
	}
	return fmt.Sprint(fallback)
}
