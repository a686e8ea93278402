package curriculum

import (
	"fmt"
	"slices"
)

// Field names a scalar resident field that UpdateResidentField may replace.
type Field string

const (
	FieldName    Field = "name"
	FieldDueDate Field = "dueDate"
)

// ParseField maps user input to a Field. It accepts the JSON names plus the
// "due", "due-date" and "due_date" spellings.
func ParseField(s string) (Field, error) {
	switch s {
	case "name":
		return FieldName, nil
	case "dueDate", "due", "due-date", "due_date":
		return FieldDueDate, nil
	}
	return "", fmt.Errorf("unknown resident field %q (expected name or dueDate)", s)
}

// ToggleExpand flips the expanded flag of the topic at ti.
func ToggleExpand(d Document, ti int) Document {
	next := slices.Clone(d)
	next[ti].Expanded = !next[ti].Expanded
	return next
}

// AddResident appends an empty resident to the topic at ti.
func AddResident(d Document, ti int) Document {
	next := slices.Clone(d)
	t := next[ti]
	residents := make([]Resident, 0, len(t.Residents)+1)
	residents = append(residents, t.Residents...)
	residents = append(residents, Resident{Subtopics: []string{}})
	t.Residents = residents
	next[ti] = t
	return next
}

// RemoveResident deletes the resident at (ti, ri). Later residents shift
// down by one.
func RemoveResident(d Document, ti, ri int) Document {
	next := slices.Clone(d)
	t := next[ti]
	if ri < 0 || ri >= len(t.Residents) {
		panic(fmt.Sprintf("curriculum: resident index %d out of range [0,%d)", ri, len(t.Residents)))
	}
	residents := make([]Resident, 0, len(t.Residents)-1)
	residents = append(residents, t.Residents[:ri]...)
	residents = append(residents, t.Residents[ri+1:]...)
	t.Residents = residents
	next[ti] = t
	return next
}

// UpdateResidentField replaces one scalar field of the resident at (ti, ri).
func UpdateResidentField(d Document, ti, ri int, field Field, value string) Document {
	return updateResident(d, ti, ri, func(r *Resident) {
		switch field {
		case FieldName:
			r.Name = value
		case FieldDueDate:
			r.DueDate = value
		default:
			panic(fmt.Sprintf("curriculum: unknown resident field %q", field))
		}
	})
}

// ToggleResidentSubtopic removes sub from the resident's set when present
// and appends it otherwise. Applying it twice restores the original set.
func ToggleResidentSubtopic(d Document, ti, ri int, sub string) Document {
	return updateResident(d, ti, ri, func(r *Resident) {
		if r.HasSubtopic(sub) {
			kept := make([]string, 0, len(r.Subtopics))
			for _, s := range r.Subtopics {
				if s != sub {
					kept = append(kept, s)
				}
			}
			r.Subtopics = kept
			return
		}
		subs := make([]string, 0, len(r.Subtopics)+1)
		subs = append(subs, r.Subtopics...)
		r.Subtopics = append(subs, sub)
	})
}

func updateResident(d Document, ti, ri int, fn func(*Resident)) Document {
	next := slices.Clone(d)
	t := next[ti]
	residents := slices.Clone(t.Residents)
	r := residents[ri]
	fn(&r)
	residents[ri] = r
	t.Residents = residents
	next[ti] = t
	return next
}
