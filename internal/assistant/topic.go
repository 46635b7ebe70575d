package assistant

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Longer phrases come first so "create a blog about" is not left half stripped.
var topicLeadIns = []string{
	"create a blog about",
	"generate a blog for",
	"create blog about",
	"generate blog for",
	"write about",
	"blog on",
}

var referenceMarkers = []string{"previous", "similar", "like before", "based on"}

var titleCaser = cases.Title(language.English)

// extractTopic strips the request phrasing from a generate message.
func extractTopic(message string) string {
	topic := strings.ToLower(message)
	for _, phrase := range topicLeadIns {
		topic = strings.ReplaceAll(topic, phrase, "")
	}
	return strings.Join(strings.Fields(topic), " ")
}

// titleFromInstruction makes a best-guess title out of raw user text.
func titleFromInstruction(message string) string {
	return titleCaser.String(extractTopic(message))
}

// wantsReference reports whether the message asks to build on an earlier post.
func wantsReference(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range referenceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
