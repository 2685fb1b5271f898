// Package views renders the site's HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"yatube/app/htmlsanitize"
	"yatube/app/models"
)

//go:embed templates
var FS embed.FS

// Pages maps a page name to its template file.
var Pages = map[string]string{
	"posts/index":       "templates/posts/index.gohtml",
	"posts/group_list":  "templates/posts/group_list.gohtml",
	"posts/profile":     "templates/posts/profile.gohtml",
	"posts/post_detail": "templates/posts/post_detail.gohtml",
	"posts/create_post": "templates/posts/create_post.gohtml",
	"users/login":       "templates/users/login.gohtml",
	"users/signup":      "templates/users/signup.gohtml",
	"admin/index":       "templates/admin/index.gohtml",
	"admin/change_list": "templates/admin/change_list.gohtml",
	"admin/change_form": "templates/admin/change_form.gohtml",
	"admin/delete_form": "templates/admin/delete_form.gohtml",
	"errors/not_found":  "templates/not_found.gohtml",
}

// URLFunc reverses a named route, e.g. url("posts:profile", "username", "leo").
type URLFunc func(name string, pairs ...any) (string, error)

// Context is what every page template receives.
type Context struct {
	User  *models.User
	Title string
	Data  any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page with the layout and partials.
func New(url URLFunc, mediaURL func(string) string) (*Renderer, error) {
	funcs := template.FuncMap{
		"url":        url,
		"media":      mediaURL,
		"linebreaks": htmlsanitize.Linebreaks,
		"truncate":   truncateChars,
		"add":        func(a, b int) int { return a + b },
		"lookup":     func(m map[string]string, k string) string { return m[k] },
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for name, file := range Pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(FS,
			"templates/layout.gohtml",
			"templates/partials/*.gohtml",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page name. Output is buffered so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, ctx Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", ctx); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Files lists the embedded template files, for tests and tooling.
func Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(FS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".gohtml") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func truncateChars(n int, s string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
