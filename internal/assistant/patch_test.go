package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/models"
)

func TestDecodePatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		outcome llm.Outcome
		check   func(t *testing.T, p draftPatch)
	}{
		{
			name:    "clean object",
			text:    `{"title":"T","tags":["a"],"content":{"introduction":"i","sections":[],"conclusion":"c"}}`,
			outcome: llm.Decoded,
			check: func(t *testing.T, p draftPatch) {
				require.NotNil(t, p.Title)
				assert.Equal(t, "T", *p.Title)
				require.NotNil(t, p.Tags)
				assert.Equal(t, []string{"a"}, *p.Tags)
				require.NotNil(t, p.Content)
				assert.Equal(t, "c", p.Content.Conclusion)
				assert.Nil(t, p.Excerpt)
			},
		},
		{
			name:    "prose around fenced json",
			text:    "Here you go:\n```json\n{\"excerpt\": \"short {braces} inside\"}\n```\nEnjoy!",
			outcome: llm.Decoded,
			check: func(t *testing.T, p draftPatch) {
				require.NotNil(t, p.Excerpt)
				assert.Equal(t, "short {braces} inside", *p.Excerpt)
				assert.Nil(t, p.Content)
			},
		},
		{
			name:    "content is a string",
			text:    `{"content":"all in one"}`,
			outcome: llm.Degraded,
			check: func(t *testing.T, p draftPatch) {
				require.NotNil(t, p.Content)
				assert.Equal(t, "all in one", p.Content.Introduction)
				assert.NotNil(t, p.Content.Sections)
				assert.Empty(t, p.Content.Conclusion)
			},
		},
		{
			name:    "content is a list",
			text:    `{"content":["a","b"]}`,
			outcome: llm.Degraded,
			check: func(t *testing.T, p draftPatch) {
				assert.Equal(t, `["a","b"]`, p.Content.Introduction)
			},
		},
		{
			name:    "content missing sections",
			text:    `{"content":{"introduction":"i","conclusion":"c"}}`,
			outcome: llm.Degraded,
			check: func(t *testing.T, p draftPatch) {
				assert.Equal(t, "i", p.Content.Introduction)
				assert.Empty(t, p.Content.Sections)
			},
		},
		{
			name:    "flat body fields",
			text:    `{"introduction":"i","sections":[{"type":"note","content":"n"}],"conclusion":"c"}`,
			outcome: llm.Decoded,
			check: func(t *testing.T, p draftPatch) {
				require.NotNil(t, p.Content)
				require.Len(t, p.Content.Sections, 1)
				assert.Equal(t, models.SectionNote, p.Content.Sections[0].Kind)
			},
		},
		{
			name:    "wrong types are skipped",
			text:    `{"title": 42, "tags": "a, b", "category": "C"}`,
			outcome: llm.Degraded,
			check: func(t *testing.T, p draftPatch) {
				assert.Nil(t, p.Title)
				assert.Nil(t, p.Tags)
				require.NotNil(t, p.Category)
				assert.Equal(t, "C", *p.Category)
			},
		},
		{
			name:    "nulls count as absent",
			text:    `{"title": null, "content": null}`,
			outcome: llm.Decoded,
			check: func(t *testing.T, p draftPatch) {
				assert.Nil(t, p.Title)
				assert.Nil(t, p.Content)
			},
		},
		{
			name:    "no object",
			text:    "I could not do that.",
			outcome: llm.Failed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, outcome := decodePatch(tt.text)
			assert.Equal(t, tt.outcome, outcome)
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestApplyToLeavesUnmentionedFields(t *testing.T) {
	d := models.Draft{
		Slug:     "old",
		Title:    "Old",
		Excerpt:  "keep me",
		Category: "Cat",
		Tags:     []string{"x"},
		Content:  &models.Content{Introduction: "intro", Sections: []models.Section{}},
	}
	title := "New Title"
	same := "Cat"

	changed := draftPatch{Title: &title, Category: &same}.applyTo(&d)

	assert.Equal(t, []string{"title"}, changed)
	assert.Equal(t, "New Title", d.Title)
	assert.Equal(t, "new-title", d.Slug)
	assert.Equal(t, "keep me", d.Excerpt)
	assert.Equal(t, []string{"x"}, d.Tags)
	assert.Equal(t, "intro", d.Content.Introduction)
}

func TestApplyToComparesContentByValue(t *testing.T) {
	d := models.Draft{Content: &models.Content{Introduction: "i"}}
	same := models.Content{Introduction: "i", Sections: []models.Section{}}

	assert.Empty(t, draftPatch{Content: &same}.applyTo(&d))

	other := models.Content{Introduction: "j"}
	assert.Equal(t, []string{"content"}, draftPatch{Content: &other}.applyTo(&d))
	other.Introduction = "mutated later"
	assert.Equal(t, "j", d.Content.Introduction)
}

func TestFallbackPatch(t *testing.T) {
	p := fallbackPatch("Write about   GO concurrency")

	require.NotNil(t, p.Title)
	assert.Equal(t, "Go Concurrency", *p.Title)
	assert.Equal(t, "go-concurrency", *p.Slug)
	assert.Equal(t, placeholderIntroduction, p.Content.Introduction)
	assert.Nil(t, p.Excerpt)
}

func TestExtractTopic(t *testing.T) {
	tests := map[string]string{
		"Create a blog about Machine Learning": "machine learning",
		"create blog about cats":               "cats",
		"Generate a blog for small teams":      "small teams",
		"write about  the  sea ":               "the sea",
		"a blog on baking":                     "a baking",
		"just chatting":                        "just chatting",
	}
	for in, want := range tests {
		assert.Equal(t, want, extractTopic(in), in)
	}
}

func TestWantsReference(t *testing.T) {
	assert.True(t, wantsReference("Something SIMILAR to last time"))
	assert.True(t, wantsReference("based on the last one"))
	assert.True(t, wantsReference("like before, but about tea"))
	assert.False(t, wantsReference("a blog about tea"))
}
