// Package store owns the live curriculum document and the admin session.
//
// A Store is the single owner of the document for one run. Every mutation
// goes through it: the pure operation from package curriculum produces the
// next document, the version counter moves, and the result is saved to the
// key-value backend. Saving is best effort. When it fails the error is logged
// and remembered, and the in-memory document stays authoritative.
//
// A Store is not safe for concurrent use; callers serialize access.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/nibzard/curriculum/internal/auth"
	"github.com/nibzard/curriculum/internal/curriculum"
	"github.com/nibzard/curriculum/internal/kv"
	"github.com/nibzard/curriculum/internal/views"
)

const (
	// DefaultDocumentKey is the key holding the topic document.
	DefaultDocumentKey = "informaticsTopics"
	// DefaultAdminKey is the key holding the admin session flag.
	DefaultAdminKey = "isAdmin"
)

var (
	// ErrAdminRequired is returned by resident mutations while logged out.
	ErrAdminRequired = errors.New("admin login required")
	// ErrIncorrectPassword is returned by Login for a wrong password.
	ErrIncorrectPassword = auth.ErrIncorrectPassword
	// ErrNoSuchTopic is returned for a topic index outside the document.
	ErrNoSuchTopic = errors.New("no such topic")
	// ErrNoSuchResident is returned for a resident index outside its topic.
	ErrNoSuchResident = errors.New("no such resident")
	// ErrUnknownSubtopic is returned when a subtopic is not offered by the topic.
	ErrUnknownSubtopic = errors.New("subtopic not offered by topic")
)

// Origin describes where the document came from when the store opened.
type Origin string

const (
	// OriginStored means the persisted document was already current.
	OriginStored Origin = "stored"
	// OriginMigrated means the persisted document was rewritten on load.
	OriginMigrated Origin = "migrated"
	// OriginSeed means nothing usable was persisted and the catalog was used.
	OriginSeed Origin = "seed"
)

// Options configures Open. Zero values select the defaults.
type Options struct {
	DocumentKey string
	AdminKey    string
	Seed        func() curriculum.Document
	Gate        *auth.Gate
	Logger      *log.Logger
	Locale      language.Tag
}

func (o *Options) setDefaults() {
	if o.DocumentKey == "" {
		o.DocumentKey = DefaultDocumentKey
	}
	if o.AdminKey == "" {
		o.AdminKey = DefaultAdminKey
	}
	if o.Seed == nil {
		o.Seed = curriculum.Seed
	}
	if o.Gate == nil {
		o.Gate = auth.NewGate("", "")
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Locale == language.Und {
		o.Locale = views.DefaultLocale
	}
}

// Store holds the current document and admin flag for one session.
type Store struct {
	backend kv.Store
	opts    Options
	logger  *log.Logger

	doc     curriculum.Document
	admin   bool
	version uint64
	origin  Origin
	report  curriculum.MigrationReport

	coverage        []views.CoverageGroup
	coverageVersion uint64
	coverageValid   bool

	lastSaveErr error
}

// Open loads the document and admin flag from backend. It never fails: a
// missing or malformed document falls back to the seed catalog and a bad
// admin flag reads as logged out. Nothing is written until the first
// mutation.
func Open(backend kv.Store, opts Options) *Store {
	opts.setDefaults()
	s := &Store{
		backend: backend,
		opts:    opts,
		logger:  opts.Logger,
	}
	s.loadDocument()
	s.loadAdmin()
	return s
}

func (s *Store) loadDocument() {
	key := s.opts.DocumentKey
	data, ok, err := s.backend.Load(key)
	switch {
	case err != nil:
		s.logger.Warn("load document failed, using seed catalog", "key", key, "err", err)
	case !ok:
		s.logger.Debug("no stored document, using seed catalog", "key", key)
	default:
		doc, report, valid := curriculum.MigrateWithReport(data)
		if valid {
			s.doc = doc
			s.report = report
			s.origin = OriginStored
			if report.Changed() {
				s.origin = OriginMigrated
				s.logger.Info("migrated stored document",
					"legacy_residents", report.LegacyResidents,
					"dropped_subtopics", report.DroppedSubtopics,
					"skipped_topics", report.SkippedTopics)
			}
			s.logger.Debug("loaded document", "key", key, "topics", report.Topics, "residents", report.Residents)
			return
		}
		s.logger.Warn("stored document is malformed, using seed catalog", "key", key, "bytes", len(data))
	}
	s.doc = curriculum.MigrateDocument(s.opts.Seed())
	s.origin = OriginSeed
}

func (s *Store) loadAdmin() {
	data, ok, err := s.backend.Load(s.opts.AdminKey)
	if err != nil {
		s.logger.Warn("load admin flag failed", "key", s.opts.AdminKey, "err", err)
		return
	}
	if !ok {
		return
	}
	s.admin = parseFlag(data)
}

// parseFlag accepts a JSON boolean or the bare strings true and false.
func parseFlag(data []byte) bool {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return b
	}
	return strings.TrimSpace(string(data)) == "true"
}

// Document returns a deep copy of the current document.
func (s *Store) Document() curriculum.Document {
	return s.doc.Clone()
}

// IsAdmin reports whether the admin session is active.
func (s *Store) IsAdmin() bool {
	return s.admin
}

// Version increases with every document change.
func (s *Store) Version() uint64 {
	return s.version
}

// Origin reports where the document came from when the store opened.
func (s *Store) Origin() Origin {
	return s.origin
}

// MigrationReport describes what loading changed in the stored document.
func (s *Store) MigrationReport() curriculum.MigrationReport {
	return s.report
}

// LastSaveError returns the error of the most recent failed save, or nil
// once a later save succeeds.
func (s *Store) LastSaveError() error {
	return s.lastSaveErr
}

// Coverage returns the coverage summary of the current document. The result
// is cached per document version and must be treated as read-only.
func (s *Store) Coverage() []views.CoverageGroup {
	if !s.coverageValid || s.coverageVersion != s.version {
		s.coverage = views.Coverage(s.doc, views.WithLocale(s.opts.Locale))
		s.coverageVersion = s.version
		s.coverageValid = true
	}
	return s.coverage
}

// ExportRows returns the flat export projection of the current document.
func (s *Store) ExportRows() []views.ExportRow {
	return views.ExportRows(s.doc)
}

// Login activates the admin session when password matches.
func (s *Store) Login(password string) error {
	if err := s.opts.Gate.Check(password); err != nil {
		s.logger.Debug("login rejected")
		return err
	}
	s.setAdmin(true)
	s.logger.Info("admin logged in")
	return nil
}

// Logout ends the admin session.
func (s *Store) Logout() {
	s.setAdmin(false)
	s.logger.Info("admin logged out")
}

func (s *Store) setAdmin(v bool) {
	s.admin = v
	data := []byte("false")
	if v {
		data = []byte("true")
	}
	s.save(s.opts.AdminKey, data)
}

// ToggleExpand flips the expanded flag of topic ti. It does not require an
// admin session.
func (s *Store) ToggleExpand(ti int) error {
	if err := s.checkTopic(ti); err != nil {
		return err
	}
	s.apply(curriculum.ToggleExpand(s.doc, ti), "toggle expand", "topic", ti)
	return nil
}

// AddResident appends an empty resident to topic ti and returns its index.
func (s *Store) AddResident(ti int) (int, error) {
	if err := s.requireAdmin(); err != nil {
		return 0, err
	}
	if err := s.checkTopic(ti); err != nil {
		return 0, err
	}
	s.apply(curriculum.AddResident(s.doc, ti), "add resident", "topic", ti)
	return len(s.doc[ti].Residents) - 1, nil
}

// RemoveResident deletes resident ri of topic ti.
func (s *Store) RemoveResident(ti, ri int) error {
	if err := s.checkResident(ti, ri); err != nil {
		return err
	}
	s.apply(curriculum.RemoveResident(s.doc, ti, ri), "remove resident", "topic", ti, "resident", ri)
	return nil
}

// UpdateResidentField replaces one scalar field of resident ri of topic ti.
func (s *Store) UpdateResidentField(ti, ri int, field curriculum.Field, value string) error {
	if err := s.checkResident(ti, ri); err != nil {
		return err
	}
	if _, err := curriculum.ParseField(string(field)); err != nil {
		return err
	}
	s.apply(curriculum.UpdateResidentField(s.doc, ti, ri, field, value),
		"update resident", "topic", ti, "resident", ri, "field", field)
	return nil
}

// SetName sets the name of resident ri of topic ti.
func (s *Store) SetName(ti, ri int, name string) error {
	return s.UpdateResidentField(ti, ri, curriculum.FieldName, name)
}

// SetDueDate sets the due date of resident ri of topic ti.
func (s *Store) SetDueDate(ti, ri int, date string) error {
	return s.UpdateResidentField(ti, ri, curriculum.FieldDueDate, date)
}

// ToggleSubtopic adds sub to resident ri of topic ti, or removes it when
// already assigned. sub must be one of the topic's subtopics.
func (s *Store) ToggleSubtopic(ti, ri int, sub string) error {
	if err := s.checkResident(ti, ri); err != nil {
		return err
	}
	offered := false
	for _, x := range s.doc[ti].Subtopics {
		if x == sub {
			offered = true
			break
		}
	}
	if !offered {
		return fmt.Errorf("%w: %q", ErrUnknownSubtopic, sub)
	}
	s.apply(curriculum.ToggleResidentSubtopic(s.doc, ti, ri, sub),
		"toggle subtopic", "topic", ti, "resident", ri, "subtopic", sub)
	return nil
}

// Save writes the current document to the backend and returns any error.
// Mutations save on their own; Save is for rewriting a migrated document.
func (s *Store) Save() error {
	data, err := curriculum.Encode(s.doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.backend.Save(s.opts.DocumentKey, data); err != nil {
		s.lastSaveErr = err
		return fmt.Errorf("save document: %w", err)
	}
	s.lastSaveErr = nil
	return nil
}

func (s *Store) apply(next curriculum.Document, op string, keyvals ...any) {
	s.doc = next
	s.version++
	s.logger.Debug(op, append(keyvals, "version", s.version)...)

	data, err := curriculum.Encode(s.doc)
	if err != nil {
		s.lastSaveErr = err
		s.logger.Warn("encode document failed", "err", err)
		return
	}
	s.save(s.opts.DocumentKey, data)
}

func (s *Store) save(key string, data []byte) {
	if err := s.backend.Save(key, data); err != nil {
		s.lastSaveErr = err
		s.logger.Warn("save failed, keeping in-memory state", "key", key, "err", err)
		return
	}
	s.lastSaveErr = nil
}

func (s *Store) requireAdmin() error {
	if !s.admin {
		return ErrAdminRequired
	}
	return nil
}

func (s *Store) checkTopic(ti int) error {
	if !s.doc.ValidTopic(ti) {
		return fmt.Errorf("%w: index %d of %d", ErrNoSuchTopic, ti, len(s.doc))
	}
	return nil
}

func (s *Store) checkResident(ti, ri int) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.checkTopic(ti); err != nil {
		return err
	}
	if !s.doc.ValidResident(ti, ri) {
		return fmt.Errorf("%w: index %d of %d in topic %q", ErrNoSuchResident, ri, len(s.doc[ti].Residents), s.doc[ti].ID)
	}
	return nil
}
