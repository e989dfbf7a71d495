// Package library loads the static patient education pages.
package library

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/library.yaml
var libraryYAML []byte

// Categories accepted in the library.
const (
	CategoryNeuro   = "neuro"
	CategoryMSK     = "msk"
	CategoryGeneral = "general"
)

type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
}

type Page struct {
	Slug     string    `yaml:"slug" json:"slug"`
	Title    string    `yaml:"title" json:"title"`
	Category string    `yaml:"category" json:"category"`
	Summary  string    `yaml:"summary" json:"summary"`
	Sections []Section `yaml:"sections" json:"sections,omitempty"`
}

// Library is an immutable, slug-indexed set of pages.
type Library struct {
	pages  []Page
	bySlug map[string]Page
}

// LoadLibrary parses the embedded library.
func LoadLibrary() (*Library, error) {
	return ParseLibrary(libraryYAML)
}

// ParseLibrary parses a YAML document with a top-level pages list.
func ParseLibrary(data []byte) (*Library, error) {
	var doc struct {
		Pages []Page `yaml:"pages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse education library: %w", err)
	}

	lib := &Library{bySlug: make(map[string]Page, len(doc.Pages))}
	for i, p := range doc.Pages {
		p.Slug = strings.TrimSpace(p.Slug)
		if p.Slug == "" || p.Title == "" {
			return nil, fmt.Errorf("education page %d: slug and title are required", i)
		}
		if !validCategory(p.Category) {
			return nil, fmt.Errorf("education page %q: unknown category %q", p.Slug, p.Category)
		}
		if _, dup := lib.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("education page %q: duplicate slug", p.Slug)
		}
		lib.bySlug[p.Slug] = p
		lib.pages = append(lib.pages, p)
	}
	sort.SliceStable(lib.pages, func(i, j int) bool { return lib.pages[i].Title < lib.pages[j].Title })
	return lib, nil
}

// List returns pages in category, or all pages when category is empty.
// Sections are omitted from list results.
func (l *Library) List(category string) []Page {
	out := make([]Page, 0, len(l.pages))
	for _, p := range l.pages {
		if category != "" && p.Category != category {
			continue
		}
		p.Sections = nil
		out = append(out, p)
	}
	return out
}

func (l *Library) Get(slug string) (Page, bool) {
	p, ok := l.bySlug[slug]
	return p, ok
}

func validCategory(c string) bool {
	switch c {
	case CategoryNeuro, CategoryMSK, CategoryGeneral:
		return true
	}
	return false
}
