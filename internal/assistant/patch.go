package assistant

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/models"
)

const placeholderIntroduction = "Could not parse content. Please try again."

// draftPatch holds the fields an update reply mentioned. Nil means the
// reply did not mention the field.
type draftPatch struct {
	Title    *string
	Subtitle *string
	Slug     *string
	Excerpt  *string
	Category *string
	Tags     *[]string
	Content  *models.Content
}

// decodePatch leniently pulls a draft out of free model text.
func decodePatch(text string) (draftPatch, llm.Outcome) {
	fields, err := llm.ExtractObject(text)
	if err != nil {
		return draftPatch{}, llm.Failed
	}

	var p draftPatch
	outcome := llm.Decoded
	degrade := func() { outcome = llm.Degraded }

	stringField := func(key string) *string {
		raw, ok := present(fields, key)
		if !ok {
			return nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			degrade()
			return nil
		}
		return &v
	}
	p.Title = stringField("title")
	p.Subtitle = stringField("subtitle")
	p.Slug = stringField("slug")
	p.Excerpt = stringField("excerpt")
	p.Category = stringField("category")

	if raw, ok := present(fields, "tags"); ok {
		var tags []string
		if err := json.Unmarshal(raw, &tags); err != nil {
			degrade()
		} else {
			tags = models.NormalizeTags(tags)
			p.Tags = &tags
		}
	}

	if raw, ok := present(fields, "content"); ok {
		content, clean := coerceContent(raw)
		p.Content = &content
		if !clean {
			degrade()
		}
	} else if flat := flatContent(fields); flat != nil {
		content, clean := coerceContent(flat)
		p.Content = &content
		if !clean {
			degrade()
		}
	}

	return p, outcome
}

func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

// flatContent gathers body fields the model left at the top level, the way
// generation replies are shaped.
func flatContent(fields map[string]json.RawMessage) json.RawMessage {
	body := make(map[string]json.RawMessage, 3)
	for _, key := range []string{"introduction", "sections", "conclusion"} {
		if raw, ok := present(fields, key); ok {
			body[key] = raw
		}
	}
	if len(body) == 0 {
		return nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	return raw
}

// coerceContent turns whatever the model returned as content into a valid
// Content. The bool is false when anything had to be filled in or replaced.
func coerceContent(raw json.RawMessage) (models.Content, bool) {
	content := models.Content{Sections: []models.Section{}}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		content.Introduction = rawText(raw)
		return content, false
	}

	clean := true
	if v, ok := present(body, "introduction"); ok {
		content.Introduction = rawText(v)
	} else {
		clean = false
	}
	if v, ok := present(body, "conclusion"); ok {
		content.Conclusion = rawText(v)
	} else {
		clean = false
	}
	if v, ok := present(body, "sections"); ok {
		var sections []models.Section
		if err := json.Unmarshal(v, &sections); err != nil {
			clean = false
		} else if sections != nil {
			content.Sections = sections
		}
	} else {
		clean = false
	}
	return content, clean
}

// rawText renders a JSON value as text: strings unquoted, anything else as
// compact JSON.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// fallbackPatch is used when the reply held no document at all. It keeps the
// conversation moving with a placeholder built from the instruction.
func fallbackPatch(instruction string) draftPatch {
	title := titleFromInstruction(instruction)
	slug := models.Slugify(title)
	return draftPatch{
		Title: &title,
		Slug:  &slug,
		Content: &models.Content{
			Introduction: placeholderIntroduction,
			Sections:     []models.Section{},
		},
	}
}

// applyTo writes the fields that differ from d and returns their names.
func (p draftPatch) applyTo(d *models.Draft) []string {
	var changed []string
	setString := func(name string, dst *string, v *string) {
		if v != nil && *v != *dst {
			*dst = *v
			changed = append(changed, name)
		}
	}

	setString("title", &d.Title, p.Title)
	if len(changed) > 0 {
		if p.Slug != nil && *p.Slug != "" {
			d.Slug = *p.Slug
		} else {
			d.Slug = models.Slugify(d.Title)
		}
	}
	setString("subtitle", &d.Subtitle, p.Subtitle)
	setString("excerpt", &d.Excerpt, p.Excerpt)
	setString("category", &d.Category, p.Category)

	if p.Tags != nil && !slices.Equal(*p.Tags, d.Tags) {
		d.Tags = slices.Clone(*p.Tags)
		changed = append(changed, "tags")
	}
	if p.Content != nil && !sameContent(p.Content, d.Content) {
		c := *p.Content
		d.Content = &c
		changed = append(changed, "content")
	}
	return changed
}

func sameContent(a, b *models.Content) bool {
	if a == nil || b == nil {
		return a == b
	}
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(left, right)
}
