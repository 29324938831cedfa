// Package web wraps rendered page fragments in the site's HTML shell.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"loopsite/application/queries"
	"loopsite/application/rendering"
)

//go:embed templates/*.html
var templateFS embed.FS

// NavLink is one entry of the site header navigation
type NavLink struct {
	Label string
	Href  string
}

// DefaultNav links the top level designed pages
var DefaultNav = []NavLink{
	{Label: "Loops", Href: "/loops"},
	{Label: "Podcast", Href: "/podcast"},
	{Label: "Blog", Href: "/blog"},
	{Label: "Leadership", Href: "/spiritual-side-of-leadership"},
}

// Layout renders full HTML documents
type Layout struct {
	site string
	nav  []NavLink
	tmpl *template.Template
	now  func() time.Time
}

// NewLayout parses the embedded templates
func NewLayout(site string, nav []NavLink) (*Layout, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout templates: %w", err)
	}
	return &Layout{site: site, nav: nav, tmpl: tmpl, now: time.Now}, nil
}

type document struct {
	Site        string
	Nav         []NavLink
	Title       string
	Description string
	Kind        string
	Body        template.HTML
	Year        int
}

// RenderPage writes page inside the layout. The document is built in
// memory first so a template failure never leaves a half written page.
func (l *Layout) RenderPage(w io.Writer, page *queries.RenderedPage) error {
	return l.write(w, document{
		Title:       page.Title,
		Description: page.Description,
		Kind:        string(page.Kind),
		Body:        rendering.Join(page.Fragments),
	})
}

type errorPage struct {
	Heading string
	Message string
}

// RenderError writes a full error document for an HTTP status
func (l *Layout) RenderError(w io.Writer, status int) error {
	page := errorPage{Heading: http.StatusText(status), Message: errorMessage(status)}
	var body bytes.Buffer
	if err := l.tmpl.ExecuteTemplate(&body, "error", page); err != nil {
		return fmt.Errorf("render error page: %w", err)
	}
	return l.write(w, document{
		Title: page.Heading,
		Kind:  "error",
		Body:  template.HTML(body.String()),
	})
}

func (l *Layout) write(w io.Writer, doc document) error {
	doc.Site = l.site
	doc.Nav = l.nav
	doc.Year = l.now().Year()

	var buf bytes.Buffer
	if err := l.tmpl.ExecuteTemplate(&buf, "layout", doc); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func errorMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "We couldn't find the page you were looking for."
	case http.StatusServiceUnavailable:
		return "Content is temporarily unavailable. Please try again shortly."
	default:
		return "Something went wrong on our side."
	}
}
