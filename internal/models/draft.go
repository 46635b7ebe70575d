package models

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Draft is the blog document being composed in a session.
type Draft struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Excerpt  string   `json:"excerpt"`
	Image    string   `json:"image"`
	Category string   `json:"category"`
	Featured bool     `json:"featured"`
	Tags     []string `json:"tags"`
	Content  *Content `json:"content"`
}

// Content is the structured body of a draft. A non-nil Content always carries
// all three of introduction, sections and conclusion.
type Content struct {
	Introduction string    `json:"introduction"`
	Sections     []Section `json:"sections"`
	Conclusion   string    `json:"conclusion"`
}

func (c Content) MarshalJSON() ([]byte, error) {
	type plain Content
	if c.Sections == nil {
		c.Sections = []Section{}
	}
	return json.Marshal(plain(c))
}

// Complete reports whether the draft has enough to be saved.
func (d *Draft) Complete() bool {
	return d != nil && strings.TrimSpace(d.Title) != "" && d.Content != nil
}

// EnsureSlug derives the slug from the title when none is set.
func (d *Draft) EnsureSlug() {
	if d.Slug == "" && d.Title != "" {
		d.Slug = Slugify(d.Title)
	}
}

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// Slugify lowercases the title, drops everything but letters, digits,
// whitespace and hyphens, and turns whitespace runs into single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = strings.TrimSpace(slug)
	return slugSpace.ReplaceAllString(slug, "-")
}

// NormalizeTags trims tags and drops blanks and duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
