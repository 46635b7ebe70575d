package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xaenox/blog-assistant/internal/llm"
	"github.com/xaenox/blog-assistant/internal/models"
)

var demoTitleRequest = regexp.MustCompile(`(?i)title to ["']?([^"'\n]+?)["']?\s*$`)

// DemoResponder answers prompts without a model so the service can run
// offline. It is meant to be set as an llm.Mock Responder.
func DemoResponder(prompt llm.Prompt, schema *llm.Schema) (string, error) {
	switch {
	case schema != nil:
		return demoBlog(prompt.User)
	case strings.HasPrefix(prompt.User, "Current blog state:"):
		return demoUpdate(prompt.User)
	default:
		return "I'm running in demo mode. Ask me to create a blog about any topic, change its title, or save it.", nil
	}
}

func demoBlog(user string) (string, error) {
	topic := "something interesting"
	if i := strings.LastIndex(user, "Topic: "); i >= 0 {
		line := strings.SplitN(user[i+len("Topic: "):], "\n", 2)[0]
		if t := strings.TrimSpace(line); t != "" {
			topic = t
		}
	}
	title := titleCaser.String(topic) + " Explained"

	blog := generatedBlog{
		Title:        title,
		Subtitle:     "A plain-language tour of " + topic,
		Excerpt:      fmt.Sprintf("A short introduction to %s and why it matters.", topic),
		Image:        "https://images.unsplash.com/photo-1498050108023-c5249f4df085?auto=format&fit=crop&w=1200&q=80",
		Category:     "General",
		Tags:         []string{topic, "guide"},
		Introduction: fmt.Sprintf("This post walks through %s step by step.", topic),
		Sections: []models.Section{
			{ID: models.StringID("basics"), Kind: models.SectionText, Title: "The basics", Content: fmt.Sprintf("%s starts with a few simple ideas.", titleCaser.String(topic))},
			{ID: models.StringID("points"), Kind: models.SectionBullets, Title: "Key points", Items: []string{"Start small", "Practise often", "Share what you learn"}},
			{ID: models.StringID("tip"), Kind: models.SectionNote, Content: "Take notes as you go."},
		},
		Conclusion: "That's the overview. Pick one idea and try it today.",
	}
	data, err := json.Marshal(blog)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func demoUpdate(user string) (string, error) {
	body := strings.TrimPrefix(user, "Current blog state:")
	request := ""
	if i := strings.Index(body, "User request: "); i >= 0 {
		request = strings.SplitN(body[i+len("User request: "):], "\n", 2)[0]
		body = body[:i]
	}

	var draft models.Draft
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &draft); err != nil {
		return "", fmt.Errorf("demo update: %w", err)
	}
	if m := demoTitleRequest.FindStringSubmatch(request); m != nil {
		draft.Title = strings.TrimSpace(m[1])
		draft.Slug = ""
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(data) + "\n```", nil
}
