package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoObject is returned when a reply contains no parseable JSON object.
var ErrNoObject = errors.New("no json object found in response")

// Outcome grades how well a free-text reply could be decoded.
type Outcome int

const (
	// Decoded means the reply held a well-formed document.
	Decoded Outcome = iota
	// Degraded means a document was found but parts of it had to be coerced.
	Degraded
	// Failed means no usable document was found.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Decoded:
		return "decoded"
	case Degraded:
		return "degraded"
	default:
		return "failed"
	}
}

var outerFence = regexp.MustCompile("(?s)^\\s*```[\\w-]*[ \\t]*\\n(.*?)\\n?```\\s*$")

// StripFences unwraps a reply that is one fenced code block as a whole.
// Fences anywhere else are content and are left alone.
func StripFences(text string) string {
	if m := outerFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// ExtractObject finds the first balanced JSON object in free text that
// decodes cleanly and returns its top-level fields.
func ExtractObject(text string) (map[string]json.RawMessage, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end >= 0 {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err == nil {
				return fields, nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, ErrNoObject
}

// matchBrace returns the index of the brace closing the one at start, or -1.
// Braces inside JSON strings are ignored.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// PlainText cleans a conversational reply: an enclosing fence is dropped and,
// when the model wrapped its answer as {"message": "..."}, the message is
// unwrapped.
func PlainText(text string) string {
	text = StripFences(text)
	if fields, err := ExtractObject(text); err == nil {
		if raw, ok := fields["message"]; ok {
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil {
				return strings.TrimSpace(msg)
			}
		}
	}
	return strings.TrimSpace(text)
}
