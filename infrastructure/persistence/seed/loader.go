// Package seed loads site content from a directory of YAML page files and
// Markdown posts.
package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
)

// Bundle is everything one seed directory holds
type Bundle struct {
	Pages []*pages.Page
	Slots map[string]slots.Overrides
}

// pageFile is the YAML layout of one page file. A file that only carries
// slots seeds the overrides of a designed page.
type pageFile struct {
	Path        string                 `yaml:"path"`
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	Published   *bool                  `yaml:"published"`
	Sections    []interface{}          `yaml:"sections"`
	Slots       map[string]interface{} `yaml:"slots"`
}

// postMeta is the frontmatter of a Markdown post
type postMeta struct {
	Path        string `yaml:"path" toml:"path" json:"path"`
	Title       string `yaml:"title" toml:"title" json:"title"`
	Description string `yaml:"description" toml:"description" json:"description"`
	Published   *bool  `yaml:"published" toml:"published" json:"published"`
	Date        string `yaml:"date" toml:"date" json:"date"`
}

var dateFormats = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// Load reads every *.yaml, *.yml and *.md file below dir. Sections are
// decoded strictly; any problem fails the whole load with the file named.
func Load(dir string) (*Bundle, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isSeedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk seed directory: %w", err)
	}
	sort.Strings(files)

	bundle := &Bundle{Slots: make(map[string]slots.Overrides)}
	seen := make(map[string]string)
	for _, file := range files {
		page, overrides, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		if page != nil {
			if prev, dup := seen[page.Path]; dup {
				return nil, fmt.Errorf("%s: path %q is already defined in %s", file, "/"+page.Path, prev)
			}
			seen[page.Path] = file
			bundle.Pages = append(bundle.Pages, page)
		}
		for path, o := range overrides {
			bundle.Slots[path] = o
		}
	}
	return bundle, nil
}

// LoadFile reads one seed file. It returns a page, slot overrides keyed by
// page path, or both.
func LoadFile(file string) (*pages.Page, map[string]slots.Overrides, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	info, err := os.Stat(file)
	if err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".md", ".markdown":
		page, err := parsePost(file, data, info.ModTime())
		return page, nil, err
	default:
		return parsePageFile(file, data, info.ModTime())
	}
}

func isSeedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".md", ".markdown":
		return true
	}
	return false
}

func parsePageFile(file string, data []byte, modTime time.Time) (*pages.Page, map[string]slots.Overrides, error) {
	var pf pageFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}

	path := pages.NormalizePath(pf.Path)
	var overrides map[string]slots.Overrides
	if pf.Slots != nil {
		o, err := decodeOverrides(pf.Slots)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: slots: %w", file, err)
		}
		overrides = map[string]slots.Overrides{path: o}
	}

	// Slot-only files carry no page.
	if pf.Title == "" && pf.Sections == nil {
		if overrides == nil {
			return nil, nil, fmt.Errorf("%s: neither a page nor slot overrides", file)
		}
		return nil, overrides, nil
	}

	raw, err := json.Marshal(normalizeYAML(pf.Sections))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: sections: %w", file, err)
	}
	list, err := sections.DecodeStrict(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: sections: %w", file, err)
	}
	// Positional ids keep reloads of an unchanged file stable.
	next := 0
	list = sections.AssignMissingIDs(list, func() string {
		next++
		return fmt.Sprintf("section-%d", next)
	})
	if err := sections.Validate(list); err != nil {
		return nil, nil, fmt.Errorf("%s: sections: %w", file, err)
	}

	page := &pages.Page{
		Path:        path,
		Title:       pf.Title,
		Description: pf.Description,
		Published:   pf.Published == nil || *pf.Published,
		Sections:    list,
		CreatedAt:   modTime.UTC(),
		UpdatedAt:   modTime.UTC(),
	}
	return page, overrides, nil
}

func parsePost(file string, data []byte, modTime time.Time) (*pages.Page, error) {
	var meta postMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("%s: frontmatter: %w", file, err)
	}

	slug := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	title := meta.Title
	if title == "" {
		title = titleFromSlug(slug)
	}
	path := pages.NormalizePath(meta.Path)
	if path == "" {
		path = "blog/" + slug
	}

	stamp := modTime.UTC()
	if meta.Date != "" {
		parsed, err := parseDate(meta.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		stamp = parsed
	}

	var list []sections.Section
	if text := strings.TrimSpace(string(body)); text != "" {
		list = []sections.Section{sections.New("body", sections.ContentBlockProps{Body: text})}
	}

	return &pages.Page{
		Path:        path,
		Title:       title,
		Description: meta.Description,
		Published:   meta.Published == nil || *meta.Published,
		Sections:    list,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}, nil
}

func titleFromSlug(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.English).String(words)
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q is not RFC3339 or YYYY-MM-DD", s)
}

func decodeOverrides(raw map[string]interface{}) (slots.Overrides, error) {
	data, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, err
	}
	var overrides slots.Overrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// normalizeYAML turns the map[interface{}]interface{} values yaml can
// produce for nested mappings into JSON-encodable maps.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
