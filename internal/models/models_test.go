package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession("sess-1", "42", "ada", t0)
	s.AppendMessage(RoleUser, "write about go channels", t0.Add(time.Second))
	s.AppendMessage(RoleAssistant, "I've generated a blog post titled 'Go Channels'.", t0.Add(2*time.Second))
	s.AppendMessage(RoleUser, "change the title", t0.Add(3*time.Second))
	s.Draft = &Draft{
		Slug:     "go-channels",
		Title:    "Go Channels",
		Excerpt:  "How channels work.",
		Category: "programming",
		Tags:     []string{"go", "concurrency"},
		Content: &Content{
			Introduction: "Channels connect goroutines.",
			Sections: []Section{
				{ID: NumericID(1), Kind: SectionText, Title: "Basics", Content: "make(chan int)"},
				{ID: StringID("b"), Kind: SectionBullets, Items: []string{"buffered", "unbuffered"}},
				{ID: NumericID(3), Kind: SectionCode, Content: "ch <- 1", Language: "go"},
			},
			Conclusion: "Use them wisely.",
		},
	}
	s.CurrentAction = ActionUpdate
	s.PendingSave = true
	return s
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := sampleSession()

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got Session
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, s.Messages, got.Messages)
	assert.Equal(t, s.Draft, got.Draft)
	assert.Equal(t, s.PendingSave, got.PendingSave)
	assert.Equal(t, s.CurrentAction, got.CurrentAction)

	again, err := json.Marshal(&got)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestSessionClone(t *testing.T) {
	s := sampleSession()
	c, err := s.Clone()
	require.NoError(t, err)

	c.Draft.Title = "changed"
	c.Messages[0].Content = "changed"
	assert.Equal(t, "Go Channels", s.Draft.Title)
	assert.Equal(t, "write about go channels", s.Messages[0].Content)
}

func TestSessionResetDraftKeepsHistory(t *testing.T) {
	s := sampleSession()
	now := s.UpdatedAt.Add(time.Minute)

	s.ResetDraft(now)

	assert.Nil(t, s.Draft)
	assert.False(t, s.PendingSave)
	assert.Empty(t, s.CurrentAction)
	assert.Len(t, s.Messages, 3)
	assert.Equal(t, now, s.UpdatedAt)
}

func TestSessionLastMessage(t *testing.T) {
	s := sampleSession()

	m, ok := s.LastMessage(RoleAssistant)
	require.True(t, ok)
	assert.Contains(t, m.Content, "Go Channels")

	m, ok = s.LastMessage(RoleUser)
	require.True(t, ok)
	assert.Equal(t, "change the title", m.Content)

	_, ok = NewSession("x", "", "", time.Now()).LastMessage(RoleUser)
	assert.False(t, ok)
}

func TestSectionKeepsUnknownShapes(t *testing.T) {
	in := `{"id":"q1","type":"quote","title":"Said","author":"Rob Pike","meta":{"lines":[1,2]},"items":"not-a-list"}`

	var s Section
	require.NoError(t, json.Unmarshal([]byte(in), &s))
	assert.Equal(t, SectionKind("quote"), s.Kind)
	assert.False(t, s.Kind.Known())
	assert.Equal(t, "Said", s.Title)
	assert.Nil(t, s.Items)
	assert.JSONEq(t, `"Rob Pike"`, string(s.Extra["author"]))
	assert.JSONEq(t, `"not-a-list"`, string(s.Extra["items"]))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestSectionWithoutTypeRoundTrips(t *testing.T) {
	in := `{"title":"Loose","content":"no kind given","extra":true}`

	var s Section
	require.NoError(t, json.Unmarshal([]byte(in), &s))
	assert.Equal(t, SectionKind(""), s.Kind)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestSectionIDPreservesJSONType(t *testing.T) {
	var secs []Section
	require.NoError(t, json.Unmarshal([]byte(`[{"id":7,"type":"text"},{"id":"7","type":"note"}]`), &secs))
	require.Len(t, secs, 2)
	assert.Equal(t, "7", secs[0].ID.String())
	assert.Equal(t, "7", secs[1].ID.String())

	out, err := json.Marshal(secs)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":7,"type":"text"},{"id":"7","type":"note"}]`, string(out))
}

func TestContentMarshalsEmptySections(t *testing.T) {
	out, err := json.Marshal(&Content{Introduction: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"introduction":"hi","sections":[],"conclusion":""}`, string(out))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Machine Learning 101":          "machine-learning-101",
		"  Go: Channels & Goroutines! ": "go-channels-goroutines",
		"already-slugged title":         "already-slugged-title",
		"Ünïcode Títle":                 "ncode-ttle",
		"":                              "",
	}
	for title, want := range tests {
		assert.Equal(t, want, Slugify(title), title)
	}
}

func TestDraftComplete(t *testing.T) {
	var nilDraft *Draft
	assert.False(t, nilDraft.Complete())
	assert.False(t, (&Draft{Title: "T"}).Complete())
	assert.False(t, (&Draft{Content: &Content{}}).Complete())
	assert.True(t, (&Draft{Title: "T", Content: &Content{}}).Complete())
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "ml"}, NormalizeTags([]string{" go", "", "ml", "go"}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}
