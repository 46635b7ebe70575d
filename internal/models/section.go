package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SectionKind selects how a section is rendered. The set is open: kinds not
// listed here are kept as-is.
type SectionKind string

const (
	SectionText    SectionKind = "text"
	SectionBullets SectionKind = "bullets"
	SectionNote    SectionKind = "note"
	SectionCode    SectionKind = "code"
)

func (k SectionKind) Known() bool {
	switch k {
	case SectionText, SectionBullets, SectionNote, SectionCode:
		return true
	}
	return false
}

// SectionID is a section identifier, either a JSON string or a JSON number.
type SectionID struct {
	value   string
	numeric bool
}

func StringID(s string) SectionID { return SectionID{value: s} }

func NumericID(n int) SectionID { return SectionID{value: strconv.Itoa(n), numeric: true} }

func (id SectionID) String() string { return id.value }

func (id SectionID) IsZero() bool { return id.value == "" }

func (id SectionID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *SectionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = SectionID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SectionID{value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = SectionID{value: n.String(), numeric: true}
	return nil
}

// Section is one block of a draft body. Keys the model sends that are not
// modelled here, or modelled keys whose value has an unexpected shape, are
// kept in Extra and written back unchanged.
type Section struct {
	ID       SectionID
	Kind     SectionKind
	Title    string
	Content  string
	Items    []string
	Language string
	Extra    map[string]json.RawMessage
}

func (s Section) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+6)
	for k, v := range s.Extra {
		out[k] = v
	}
	set := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	if !s.ID.IsZero() {
		if err := set("id", s.ID); err != nil {
			return nil, err
		}
	}
	fields := []struct {
		key   string
		value any
		empty bool
	}{
		{"type", s.Kind, s.Kind == ""},
		{"title", s.Title, s.Title == ""},
		{"content", s.Content, s.Content == ""},
		{"items", s.Items, s.Items == nil},
		{"language", s.Language, s.Language == ""},
	}
	for _, f := range fields {
		if f.empty {
			continue
		}
		if err := set(f.key, f.value); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Section{}
	take := func(key string, dst any) {
		v, ok := raw[key]
		if !ok {
			return
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			delete(raw, key)
			return
		}
		if err := json.Unmarshal(v, dst); err == nil {
			delete(raw, key)
		}
	}
	take("id", &s.ID)
	take("type", &s.Kind)
	take("title", &s.Title)
	take("content", &s.Content)
	take("items", &s.Items)
	take("language", &s.Language)

	if len(raw) > 0 {
		s.Extra = make(map[string]json.RawMessage, len(raw))
		for k, v := range raw {
			var buf bytes.Buffer
			if err := json.Compact(&buf, v); err != nil {
				return err
			}
			s.Extra[k] = buf.Bytes()
		}
	}
	return nil
}
