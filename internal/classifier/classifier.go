package classifier

import (
	"strings"

	"github.com/xaenox/blog-assistant/internal/models"
)

type Classifier interface {
	Classify(text string) models.Action
}

type rule struct {
	action   models.Action
	keywords []string
}

// KeywordClassifier maps a message to an intent by case-insensitive keyword
// containment. Rules are checked in order and the first match wins.
type KeywordClassifier struct {
	rules    []rule
	fallback models.Action
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []rule{
			{models.ActionSave, []string{"save", "submit", "publish"}},
			{models.ActionUpdate, []string{"update", "change", "modify", "edit"}},
			{models.ActionGenerate, []string{"create", "generate", "write", "blog about", "blog for"}},
		},
		fallback: models.ActionChat,
	}
}

func (c *KeywordClassifier) Classify(text string) models.Action {
	text = strings.ToLower(text)
	for _, r := range c.rules {
		for _, keyword := range r.keywords {
			if strings.Contains(text, keyword) {
				return r.action
			}
		}
	}
	return c.fallback
}
