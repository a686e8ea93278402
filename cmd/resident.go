package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/curriculum/internal/curriculum"
	"github.com/nibzard/curriculum/internal/store"
)

// resolveTopic accepts a 1-based position or a topic id.
func resolveTopic(doc curriculum.Document, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(doc) {
			return 0, fmt.Errorf("%w: %d (have %d topics)", store.ErrNoSuchTopic, n, len(doc))
		}
		return n - 1, nil
	}
	if ti := doc.TopicIndex(arg); ti >= 0 {
		return ti, nil
	}
	return 0, fmt.Errorf("%w: %q", store.ErrNoSuchTopic, arg)
}

// resolveResident accepts a 1-based position within topic ti.
func resolveResident(doc curriculum.Document, ti int, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("resident must be a number, got %q", arg)
	}
	if !doc.ValidResident(ti, n-1) {
		return 0, fmt.Errorf("%w: #%d (topic %q has %d)", store.ErrNoSuchResident, n, doc[ti].ID, len(doc[ti].Residents))
	}
	return n - 1, nil
}

// resolveSubtopic accepts the exact subtopic text or a 1-based position.
func resolveSubtopic(t curriculum.Topic, arg string) (string, error) {
	for _, sub := range t.Subtopics {
		if sub == arg {
			return sub, nil
		}
	}
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(t.Subtopics) {
		return t.Subtopics[n-1], nil
	}
	return "", fmt.Errorf("%w: %q", store.ErrUnknownSubtopic, arg)
}

// mutate opens the store, runs fn and reports a failed save as an error.
func (e *env) mutate(fn func(st *store.Store, doc curriculum.Document) (string, error)) error {
	st, err := e.openStore()
	if err != nil {
		return err
	}
	msg, err := fn(st, st.Document())
	if errors.Is(err, store.ErrAdminRequired) {
		return fmt.Errorf("%w (run 'curriculum login' first)", err)
	}
	if err != nil {
		return err
	}
	if err := st.LastSaveError(); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if msg != "" {
		fmt.Fprintln(stdout, msg)
	}
	return nil
}

// topicResident resolves the leading <topic> <resident> arguments.
func topicResident(doc curriculum.Document, args []string) (int, int, error) {
	ti, err := resolveTopic(doc, args[0])
	if err != nil {
		return 0, 0, err
	}
	ri, err := resolveResident(doc, ti, args[1])
	if err != nil {
		return 0, 0, err
	}
	return ti, ri, nil
}

func expandCommand(e *env, args []string) error {
	fs := newFlagSet("expand")
	rest, err := parseArgs(fs, args, "<topic>")
	if err != nil {
		return err
	}
	return e.mutate(func(st *store.Store, doc curriculum.Document) (string, error) {
		ti, err := resolveTopic(doc, rest[0])
		if err != nil {
			return "", err
		}
		if err := st.ToggleExpand(ti); err != nil {
			return "", err
		}
		state := "collapsed"
		if st.Document()[ti].Expanded {
			state = "expanded"
		}
		return fmt.Sprintf("%s %s", doc[ti].Title, state), nil
	})
}

func addResidentCommand(e *env, args []string) error {
	fs := newFlagSet("add-resident")
	name := fs.String("name", "", "Resident name")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	var subs stringList
	fs.Var(&subs, "subtopic", "Subtopic to assign (repeatable)")
	rest, err := parseArgs(fs, args, "<topic>")
	if err != nil {
		return err
	}
	return e.mutate(func(st *store.Store, doc curriculum.Document) (string, error) {
		ti, err := resolveTopic(doc, rest[0])
		if err != nil {
			return "", err
		}
		var resolved []string
		for _, s := range subs {
			sub, err := resolveSubtopic(doc[ti], s)
			if err != nil {
				return "", err
			}
			resolved = append(resolved, sub)
		}

		ri, err := st.AddResident(ti)
		if err != nil {
			return "", err
		}
		if *name != "" {
			if err := st.SetName(ti, ri, *name); err != nil {
				return "", err
			}
		}
		if *due != "" {
			if err := st.SetDueDate(ti, ri, *due); err != nil {
				return "", err
			}
		}
		for _, sub := range resolved {
			if st.Document()[ti].Residents[ri].HasSubtopic(sub) {
				continue
			}
			if err := st.ToggleSubtopic(ti, ri, sub); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("Added resident #%d to %s", ri+1, doc[ti].Title), nil
	})
}

func removeResidentCommand(e *env, args []string) error {
	fs := newFlagSet("remove-resident")
	rest, err := parseArgs(fs, args, "<topic>", "<resident>")
	if err != nil {
		return err
	}
	return e.mutate(func(st *store.Store, doc curriculum.Document) (string, error) {
		ti, ri, err := topicResident(doc, rest)
		if err != nil {
			return "", err
		}
		if err := st.RemoveResident(ti, ri); err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed resident #%d from %s", ri+1, doc[ti].Title), nil
	})
}

func setNameCommand(e *env, args []string) error {
	return setFieldCommand(e, "set-name", curriculum.FieldName, "<name>", args)
}

func setDueCommand(e *env, args []string) error {
	return setFieldCommand(e, "set-due", curriculum.FieldDueDate, "<date>", args)
}

func setFieldCommand(e *env, name string, field curriculum.Field, valueArg string, args []string) error {
	fs := newFlagSet(name)
	rest, err := parseArgs(fs, args, "<topic>", "<resident>", valueArg)
	if err != nil {
		return err
	}
	return e.mutate(func(st *store.Store, doc curriculum.Document) (string, error) {
		ti, ri, err := topicResident(doc, rest)
		if err != nil {
			return "", err
		}
		if err := st.UpdateResidentField(ti, ri, field, rest[2]); err != nil {
			return "", err
		}
		return "", nil
	})
}

func toggleSubtopicCommand(e *env, args []string) error {
	fs := newFlagSet("toggle-subtopic")
	rest, err := parseArgs(fs, args, "<topic>", "<resident>", "<subtopic>")
	if err != nil {
		return err
	}
	return e.mutate(func(st *store.Store, doc curriculum.Document) (string, error) {
		ti, ri, err := topicResident(doc, rest)
		if err != nil {
			return "", err
		}
		sub, err := resolveSubtopic(doc[ti], rest[2])
		if err != nil {
			return "", err
		}
		if err := st.ToggleSubtopic(ti, ri, sub); err != nil {
			return "", err
		}
		box := "[ ]"
		if st.Document()[ti].Residents[ri].HasSubtopic(sub) {
			box = "[x]"
		}
		return fmt.Sprintf("%s %s", box, sub), nil
	})
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
