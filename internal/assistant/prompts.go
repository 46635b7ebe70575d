package assistant

import (
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/xaenox/blog-assistant/internal/llm"
)

const systemPrompt = `You are a helpful assistant that drafts and edits blog posts together with the user and remembers the conversation so far.

The user can ask you to create a new blog post on a topic, change parts of the current draft, or save the draft to their collection. Keep replies clear and practical.`

const generationPrompt = `You are an expert writer of simple, easy-to-understand blog posts.

Write an accessible but thorough blog post on the topic below.

Style:
- Plain language, short sentences and short paragraphs.
- Friendly, conversational tone.
- Explain technical ideas in everyday words and use real-world examples.

Structure:
- A compelling but simple title and a subtitle.
- A URL slug derived from the title (lowercase, hyphens instead of spaces).
- An excerpt of 2-3 sentences saying what the reader will learn.
- A relevant Unsplash image URL, e.g. https://images.unsplash.com/photo-<id>?auto=format&fit=crop&w=1200&q=80
- A category and a few popular tags.
- At the top level, ALL THREE of:
  * introduction: 2-3 welcoming paragraphs on what the topic is and why it matters.
  * sections: several sections, each with a clear title. Use "text" for explanations, "bullets" (with items) for scannable lists, "note" for tips, and "code" (with language) only when really needed.
  * conclusion: 2-3 paragraphs with key takeaways and next steps.

Topic: %s`

const referencePrompt = `

Reference from the previous blog:
Title: %s
Category: %s
Structure: %d sections`

const updatePrompt = `Current blog state:
%s

User request: %s

Update only what the request asks for and keep every other field exactly as it is.

Return the complete updated blog as a single JSON object with the same fields.`

const chatPrompt = `You are a helpful blog content assistant. You help users create, update and manage blog posts.

You can help with:
- Creating new blogs (e.g. "Generate a blog about the future of AI in healthcare")
- Updating the current draft (title, excerpt, tags, sections and so on)
- Brainstorming ideas for posts
- Saving drafts to their collection

Be conversational, friendly and helpful. Answer in plain text, not JSON.`

const draftContextPrompt = `

Current blog in progress:
Title: %s
Category: %s`

var sectionDefinition = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"id":       {Type: jsonschema.String, Description: "Section identifier"},
		"type":     {Type: jsonschema.String, Description: "Type of section: text, bullets, note, code"},
		"title":    {Type: jsonschema.String},
		"content":  {Type: jsonschema.String},
		"items":    {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
		"language": {Type: jsonschema.String, Description: "Programming language of a code section"},
	},
	Required: []string{"type"},
}

var blogSchema = llm.Schema{
	Name:        "blog_create",
	Description: "A complete blog post draft",
	Definition: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":        {Type: jsonschema.String, Description: "The title of the blog post"},
			"subtitle":     {Type: jsonschema.String, Description: "A subtitle or tagline"},
			"slug":         {Type: jsonschema.String, Description: "SEO friendly URL slug"},
			"excerpt":      {Type: jsonschema.String, Description: "A short summary for previews"},
			"image":        {Type: jsonschema.String, Description: "Unsplash image URL"},
			"category":     {Type: jsonschema.String, Description: "Category of the blog"},
			"tags":         {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
			"introduction": {Type: jsonschema.String, Description: "Introduction paragraphs"},
			"sections":     {Type: jsonschema.Array, Items: &sectionDefinition, Description: "List of content sections"},
			"conclusion":   {Type: jsonschema.String, Description: "Concluding thoughts"},
		},
		Required: []string{"title", "excerpt", "category"},
	},
}
