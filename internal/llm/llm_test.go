package llm

import (
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	Name: "thing",
	Definition: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {Type: jsonschema.String},
			"count": {Type: jsonschema.Integer},
		},
		Required: []string{"title"},
	},
}

type thing struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestStructuredDecodes(t *testing.T) {
	m := NewMock(Reply{Text: "```json\n{\"title\":\"A\",\"count\":2}\n```"})

	var out thing
	require.NoError(t, m.Structured(t.Context(), Prompt{User: "x"}, testSchema, &out))
	assert.Equal(t, thing{Title: "A", Count: 2}, out)

	calls := m.Calls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Schema)
	assert.Equal(t, "thing", calls[0].Schema.Name)
}

func TestStructuredKeepsFencesInsideValues(t *testing.T) {
	want := "Run:\n```sh\ngo test\n```"
	body := `{"title":"Run:\n` + "```" + `sh\ngo test\n` + "```" + `"}`
	for name, text := range map[string]string{
		"raw":     body,
		"wrapped": "```json\n" + body + "\n```",
	} {
		t.Run(name, func(t *testing.T) {
			var out thing
			require.NoError(t, NewMock(Reply{Text: text}).Structured(t.Context(), Prompt{}, testSchema, &out))
			assert.Equal(t, want, out.Title)
		})
	}
}

func TestStructuredFailsClosed(t *testing.T) {
	tests := map[string]string{
		"empty":            "   ",
		"prose":            "Here is your blog!",
		"missing required": `{"count": 1}`,
		"null required":    `{"title": null}`,
		"wrong type":       `{"title": "A", "count": "many"}`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			out := thing{Title: "untouched"}
			err := NewMock(Reply{Text: text}).Structured(t.Context(), Prompt{}, testSchema, &out)
			require.Error(t, err)
			if name == "empty" {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			} else {
				assert.ErrorIs(t, err, ErrSchemaViolation)
			}
		})
	}
}
