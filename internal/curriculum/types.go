package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Resource is a reading or slide set attached to a topic.
type Resource struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Resident is a named trainee assigned to subtopics of one topic.
//
// Subtopics behaves as a set; insertion order is kept for display.
type Resident struct {
	Name      string   `json:"name"`
	Subtopics []string `json:"subtopics"`
	DueDate   string   `json:"dueDate"`
}

// HasSubtopic reports whether sub is assigned to the resident.
func (r Resident) HasSubtopic(sub string) bool {
	return slices.Contains(r.Subtopics, sub)
}

// MarshalJSON always writes subtopics as an array, never null.
func (r Resident) MarshalJSON() ([]byte, error) {
	type plain Resident
	p := plain(r)
	if p.Subtopics == nil {
		p.Subtopics = []string{}
	}
	return json.Marshal(p)
}

// Topic is one entry of the curriculum.
//
// Extra holds persisted fields this package does not model. They are carried
// through load and save unchanged.
type Topic struct {
	ID        string
	Title     string
	Subtopics []string
	Resources []Resource
	Residents []Resident
	Expanded  bool
	Extra     map[string]json.RawMessage
}

// knownTopicFields lists the JSON keys mapped onto Topic fields.
var knownTopicFields = []string{"id", "title", "subtopics", "resources", "residents", "expanded"}

func isKnownTopicField(key string) bool {
	return slices.Contains(knownTopicFields, key)
}

type topicJSON struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Subtopics []string   `json:"subtopics"`
	Resources []Resource `json:"resources"`
	Residents []Resident `json:"residents"`
	Expanded  bool       `json:"expanded"`
}

// MarshalJSON writes the known fields first, then Extra in key order.
func (t Topic) MarshalJSON() ([]byte, error) {
	known := topicJSON{
		ID:        t.ID,
		Title:     t.Title,
		Subtopics: t.Subtopics,
		Resources: t.Resources,
		Residents: t.Residents,
		Expanded:  t.Expanded,
	}
	if known.Subtopics == nil {
		known.Subtopics = []string{}
	}
	if known.Resources == nil {
		known.Resources = []Resource{}
	}
	if known.Residents == nil {
		known.Residents = []Resident{}
	}

	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(t.Extra) == 0 {
		return data, nil
	}

	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		if isKnownTopicField(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		raw := t.Extra[k]
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a topic in the current shape. Keys match exactly;
// any other key, including a known name in different case, goes to Extra.
// Documents of unknown vintage should go through Migrate instead.
func (t *Topic) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*t = Topic{}
	targets := map[string]any{
		"id":        &t.ID,
		"title":     &t.Title,
		"subtopics": &t.Subtopics,
		"resources": &t.Resources,
		"residents": &t.Residents,
		"expanded":  &t.Expanded,
	}
	for k, v := range fields {
		if target, ok := targets[k]; ok {
			if err := json.Unmarshal(v, target); err != nil {
				return fmt.Errorf("topic field %q: %w", k, err)
			}
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]json.RawMessage)
		}
		t.Extra[k] = compactRaw(v)
	}
	return nil
}

// Document is the whole curriculum: an ordered list of topics.
type Document []Topic

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for i, t := range d {
		out[i] = t.clone()
	}
	return out
}

func (t Topic) clone() Topic {
	c := t
	c.Subtopics = slices.Clone(t.Subtopics)
	c.Resources = slices.Clone(t.Resources)
	if t.Residents != nil {
		c.Residents = make([]Resident, len(t.Residents))
		for i, r := range t.Residents {
			r.Subtopics = slices.Clone(r.Subtopics)
			c.Residents[i] = r
		}
	}
	if t.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(t.Extra))
		for k, v := range t.Extra {
			c.Extra[k] = bytes.Clone(v)
		}
	}
	return c
}

// TopicIndex returns the position of the topic with the given id, or -1.
func (d Document) TopicIndex(id string) int {
	for i := range d {
		if d[i].ID == id {
			return i
		}
	}
	return -1
}

// ValidTopic reports whether ti addresses a topic.
func (d Document) ValidTopic(ti int) bool {
	return ti >= 0 && ti < len(d)
}

// ValidResident reports whether (ti, ri) addresses a resident.
func (d Document) ValidResident(ti, ri int) bool {
	return d.ValidTopic(ti) && ri >= 0 && ri < len(d[ti].Residents)
}

// ResidentCount returns the number of residents across all topics.
func (d Document) ResidentCount() int {
	n := 0
	for _, t := range d {
		n += len(t.Residents)
	}
	return n
}

// Encode serializes the document with 2-space indentation and a trailing
// newline.
func Encode(d Document) ([]byte, error) {
	if d == nil {
		d = Document{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal curriculum: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a document in the current shape.
func Decode(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}
	return d, nil
}

func compactRaw(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return bytes.Clone(raw)
	}
	return buf.Bytes()
}
