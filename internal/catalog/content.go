// Package catalog holds the site content: profile, projects, resume and
// playlist. Content is authored in YAML, rendered once and served from an
// SQLite store.
package catalog

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Content is the whole authored site content.
type Content struct {
	Profile  Profile   `yaml:"profile"`
	Projects []Project `yaml:"projects"`
	Resume   Resume    `yaml:"resume"`
	Playlist []Track   `yaml:"playlist"`
}

// Profile is the owner's identity and about text. About and Summary are
// markdown; the HTML fields are filled when the content is stored.
type Profile struct {
	Name        string        `yaml:"name"`
	Role        string        `yaml:"role"`
	Email       string        `yaml:"email"`
	Site        string        `yaml:"site"`
	Tagline     string        `yaml:"tagline"`
	About       string        `yaml:"about"`
	Summary     string        `yaml:"summary"`
	AboutHTML   template.HTML `yaml:"-"`
	SummaryHTML template.HTML `yaml:"-"`
}

// ResumeFileStem is the download name of the resume, e.g.
// "Jane_Doe_Resume".
func (p Profile) ResumeFileStem() string {
	stem := strings.Join(strings.FieldsFunc(p.Name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}), "_")
	if stem == "" {
		return "Resume"
	}
	return stem + "_Resume"
}

// Project is one showcase card.
type Project struct {
	Slug        string        `yaml:"slug"`
	Title       string        `yaml:"title"`
	Summary     string        `yaml:"summary"`
	Link        string        `yaml:"link"`
	Image       string        `yaml:"image"`
	Tags        []string      `yaml:"tags"`
	SummaryHTML template.HTML `yaml:"-"`
}

// Resume is the exportable resume document.
type Resume struct {
	Skills   []string  `yaml:"skills"`
	Sections []Section `yaml:"sections"`
}

// Section groups resume items under a heading, e.g. "Experience".
type Section struct {
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// Item is one resume entry.
type Item struct {
	Title   string   `yaml:"title"`
	Org     string   `yaml:"org"`
	Start   string   `yaml:"start"`
	End     string   `yaml:"end"`
	Logo    string   `yaml:"logo"`
	Bullets []string `yaml:"bullets"`
}

// Track is one playlist entry.
type Track struct {
	Title string `yaml:"title" json:"title"`
	Src   string `yaml:"src" json:"src"`
}

// Parse decodes YAML content and checks it.
func Parse(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the embedded content.
func Default() (*Content, error) {
	return Parse(defaultContent)
}

// Validate checks required fields and slug uniqueness.
func (c *Content) Validate() error {
	if c.Profile.Name == "" {
		return fmt.Errorf("profile.name is required")
	}
	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if p.Slug == "" || p.Title == "" {
			return fmt.Errorf("projects[%d]: slug and title are required", i)
		}
		if seen[p.Slug] {
			return fmt.Errorf("projects[%d]: duplicate slug %q", i, p.Slug)
		}
		seen[p.Slug] = true
	}
	for i, t := range c.Playlist {
		if t.Src == "" {
			return fmt.Errorf("playlist[%d]: src is required", i)
		}
	}
	return nil
}
