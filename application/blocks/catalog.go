package blocks

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"loopsite/domain/sections"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded block templates. Each file defines one
// template named after the section type it renders.
func Templates(md *Markdown) (*template.Template, error) {
	funcs := template.FuncMap{
		"markdown": md.Render,
		"inc":      func(i int) int { return i + 1 },
		"columns": func(n int) int {
			if n <= 0 {
				return 3
			}
			return n
		},
	}
	tmpl, err := template.New("blocks").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse block templates: %w", err)
	}
	return tmpl, nil
}

// templated binds a block that executes the template named after P's type.
func templated[P sections.Props](tmpl *template.Template) Block {
	var zero P
	name := string(zero.SectionType())
	return bind(func(p P) (template.HTML, error) {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, p); err != nil {
			return "", fmt.Errorf("failed to render %s block: %w", name, err)
		}
		return template.HTML(buf.String()), nil
	})
}

// Default builds the registry holding every shipped block.
func Default() (*Registry, error) {
	tmpl, err := Templates(NewMarkdown())
	if err != nil {
		return nil, err
	}
	return NewRegistry(
		templated[sections.HeroProps](tmpl),
		templated[sections.ContentBlockProps](tmpl),
		templated[sections.ComparisonProps](tmpl),
		templated[sections.LoopDetailProps](tmpl),
		templated[sections.FAQProps](tmpl),
		templated[sections.NavigationCardsProps](tmpl),
		templated[sections.FeatureGridProps](tmpl),
		templated[sections.QuoteProps](tmpl),
		templated[sections.CTABannerProps](tmpl),
		templated[sections.EpisodeListProps](tmpl),
	)
}

// MustDefault is Default for process start-up.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}
