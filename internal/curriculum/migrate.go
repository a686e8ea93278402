package curriculum

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"
)

// MigrationReport summarizes what Migrate had to change.
type MigrationReport struct {
	Topics           int // topics in the migrated document
	Residents        int // residents in the migrated document
	LegacyResidents  int // residents converted from the single "subtopic" shape
	DroppedSubtopics int // assignments removed as duplicates or dangling references
	SkippedTopics    int // array entries that were not objects
}

// Changed reports whether the migrated document differs in shape from the
// input.
func (r MigrationReport) Changed() bool {
	return r.LegacyResidents > 0 || r.DroppedSubtopics > 0 || r.SkippedTopics > 0
}

// Migrate normalizes a previously persisted document into the current shape.
// It reports ok=false when data is not a JSON array, in which case the caller
// should fall back to the seed catalog.
func Migrate(data []byte) (Document, bool) {
	doc, _, ok := MigrateWithReport(data)
	return doc, ok
}

// MigrateWithReport is Migrate plus a summary of the changes made.
func MigrateWithReport(data []byte) (Document, MigrationReport, bool) {
	var report MigrationReport

	root, err := decodeLoose(data)
	if err != nil {
		return nil, report, false
	}
	items, ok := root.([]any)
	if !ok {
		return nil, report, false
	}

	doc := make(Document, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			report.SkippedTopics++
			continue
		}
		doc = append(doc, migrateTopic(obj, &report))
	}

	report.Topics = len(doc)
	report.Residents = doc.ResidentCount()
	return doc, report, true
}

// MigrateDocument applies the same normalization to an in-memory document.
// Migrating a document that is already current returns an equal document.
func MigrateDocument(d Document) Document {
	out := make(Document, len(d))
	for i, t := range d.Clone() {
		t.Subtopics = uniqueStrings(t.Subtopics)
		if t.Resources == nil {
			t.Resources = []Resource{}
		}
		if t.Residents == nil {
			t.Residents = []Resident{}
		}
		for j := range t.Residents {
			t.Residents[j].Subtopics, _ = keepAssignable(t.Residents[j].Subtopics, t.Subtopics)
		}
		out[i] = t
	}
	return out
}

func decodeLoose(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after document")
	}
	return root, nil
}

func migrateTopic(obj map[string]any, report *MigrationReport) Topic {
	t := Topic{
		ID:        stringOrEmpty(obj["id"]),
		Title:     stringOrEmpty(obj["title"]),
		Subtopics: uniqueStrings(stringList(obj["subtopics"])),
		Resources: resourceList(obj["resources"]),
		Residents: []Resident{},
		Expanded:  truthy(obj["expanded"]),
	}

	if list, ok := obj["residents"].([]any); ok {
		for _, item := range list {
			t.Residents = append(t.Residents, migrateResident(item, t.Subtopics, report))
		}
	}

	for k, v := range obj {
		if isKnownTopicField(k) {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]json.RawMessage)
		}
		t.Extra[k] = raw
	}
	return t
}

func migrateResident(item any, allowed []string, report *MigrationReport) Resident {
	// Non-object entries have no fields; lookups on a nil map yield nil.
	obj, _ := item.(map[string]any)

	var subs []string
	if list, ok := obj["subtopics"].([]any); ok {
		subs = stringList(list)
	} else {
		report.LegacyResidents++
		if legacy := stringOrEmpty(obj["subtopic"]); legacy != "" {
			subs = []string{legacy}
		}
	}

	kept, dropped := keepAssignable(subs, allowed)
	report.DroppedSubtopics += dropped

	return Resident{
		Name:      stringOrEmpty(obj["name"]),
		Subtopics: kept,
		DueDate:   stringOrEmpty(obj["dueDate"]),
	}
}

// keepAssignable drops duplicates and entries that are not subtopics of the
// owning topic. The result is never nil.
func keepAssignable(subs, allowed []string) ([]string, int) {
	out := make([]string, 0, len(subs))
	dropped := 0
	for _, s := range subs {
		if !slices.Contains(allowed, s) || slices.Contains(out, s) {
			dropped++
			continue
		}
		out = append(out, s)
	}
	return out, dropped
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func resourceList(v any) []Resource {
	out := []Resource{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		switch r := item.(type) {
		case map[string]any:
			out = append(out, Resource{
				Name: stringOrEmpty(r["name"]),
				URL:  stringOrEmpty(r["url"]),
			})
		case string:
			out = append(out, Resource{Name: r})
		}
	}
	return out
}

// stringList keeps the string and number elements of a JSON array.
func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case json.Number:
			out = append(out, s.String())
		}
	}
	return out
}

// stringOrEmpty coerces a JSON scalar to a string; falsy values become "".
func stringOrEmpty(v any) string {
	if !truthy(v) {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return "true"
	}
	return ""
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
