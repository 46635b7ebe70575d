// Package render turns a draft into Markdown and HTML for previewing.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/xaenox/blog-assistant/internal/models"
)

// Preview is a rendered draft.
type Preview struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// Markdown lays the draft out as a Markdown document.
func Markdown(d models.Draft) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	if d.Subtitle != "" {
		fmt.Fprintf(&b, "*%s*\n\n", d.Subtitle)
	}
	if d.Image != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", d.Title, d.Image)
	}
	if d.Excerpt != "" {
		fmt.Fprintf(&b, "> %s\n\n", d.Excerpt)
	}

	if c := d.Content; c != nil {
		paragraph(&b, c.Introduction)
		for _, s := range c.Sections {
			section(&b, s)
		}
		if c.Conclusion != "" {
			b.WriteString("## Conclusion\n\n")
			paragraph(&b, c.Conclusion)
		}
	}

	var meta []string
	if d.Category != "" {
		meta = append(meta, "Category: "+d.Category)
	}
	if len(d.Tags) > 0 {
		meta = append(meta, "Tags: "+strings.Join(d.Tags, ", "))
	}
	if len(meta) > 0 {
		b.WriteString("---\n\n")
		b.WriteString(strings.Join(meta, " | "))
		b.WriteString("\n")
	}
	return b.String()
}

func section(b *strings.Builder, s models.Section) {
	if s.Title != "" {
		fmt.Fprintf(b, "## %s\n\n", s.Title)
	}
	switch s.Kind {
	case models.SectionBullets:
		paragraph(b, s.Content)
		for _, item := range s.Items {
			fmt.Fprintf(b, "- %s\n", item)
		}
		if len(s.Items) > 0 {
			b.WriteString("\n")
		}
	case models.SectionNote:
		if s.Content != "" {
			for _, line := range strings.Split(strings.TrimSpace(s.Content), "\n") {
				fmt.Fprintf(b, "> %s\n", line)
			}
			b.WriteString("\n")
		}
	case models.SectionCode:
		fmt.Fprintf(b, "```%s\n%s\n```\n\n", s.Language, strings.TrimRight(s.Content, "\n"))
	default:
		paragraph(b, s.Content)
	}
}

func paragraph(b *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.WriteString(text)
	b.WriteString("\n\n")
}

// HTML renders the draft's Markdown with goldmark.
func HTML(d models.Draft) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(d)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Render produces both forms.
func Render(d models.Draft) (Preview, error) {
	html, err := HTML(d)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Markdown: Markdown(d), HTML: html}, nil
}
