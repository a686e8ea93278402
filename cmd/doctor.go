package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/nibzard/curriculum/internal/curriculum"
	"github.com/nibzard/curriculum/internal/store"
)

// doctorCommand checks config, stored state and document validity.
func doctorCommand(e *env, args []string) error {
	fs := newFlagSet("doctor")
	verbose := fs.Bool("v", false, "Verbose output")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	cfg := e.cfg

	fmt.Fprintln(stdout, "Curriculum Doctor")
	fmt.Fprintln(stdout, "=================")
	fmt.Fprintln(stdout)

	allOK := true
	fail := func(format string, a ...any) {
		allOK = false
		fmt.Fprintf(stdout, "  ❌ "+format+"\n", a...)
	}
	ok := func(format string, a ...any) {
		fmt.Fprintf(stdout, "  ✅ "+format+"\n", a...)
	}
	warn := func(format string, a ...any) {
		fmt.Fprintf(stdout, "  ⚠️  "+format+"\n", a...)
	}

	// Config
	file := e.cws.GetConfigFile()
	if file == "" {
		file = "(none, using defaults)"
	}
	fmt.Fprintf(stdout, "Config: %s\n", file)
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, err := range errs {
			fail("%v", err)
		}
	} else {
		ok("settings valid")
	}
	for _, key := range e.cws.Unknown {
		warn("unknown key %q ignored", key)
	}
	if cfg.Gate().UsesHash() {
		ok("admin password: bcrypt hash")
	} else {
		warn("admin password: plain text (use hash-password and admin_password_hash)")
	}
	fmt.Fprintln(stdout)

	// Data directory
	if cfg.Ephemeral {
		fmt.Fprintln(stdout, "Data directory: (in memory)")
	} else {
		fmt.Fprintf(stdout, "Data directory: %s\n", cfg.DataDir)
		info, err := os.Stat(cfg.DataDir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			warn("not created yet (created on first change)")
		case err != nil:
			fail("%v", err)
		case !info.IsDir():
			fail("not a directory")
		default:
			ok("exists")
		}
	}
	fmt.Fprintln(stdout)

	// Catalog
	catalog := cfg.CatalogFile
	if catalog == "" {
		catalog = "(built-in)"
	}
	fmt.Fprintf(stdout, "Catalog: %s\n", catalog)
	seed, err := curriculum.SeedFunc(cfg.CatalogFile)
	if err != nil {
		fail("%v", err)
	} else {
		ok("%d topics", len(seed()))
	}
	fmt.Fprintln(stdout)

	// Stored document
	fmt.Fprintf(stdout, "Document: %s\n", cfg.DocumentKey)
	st, err := e.openStore()
	if err != nil {
		fail("%v", err)
		return doctorResult(allOK)
	}
	doc := st.Document()
	switch st.Origin() {
	case store.OriginSeed:
		warn("nothing stored yet, using the seed catalog")
	case store.OriginMigrated:
		report := st.MigrationReport()
		warn("stored in an older format (%d legacy residents, %d dropped subtopics, %d skipped entries); run migrate",
			report.LegacyResidents, report.DroppedSubtopics, report.SkippedTopics)
	default:
		ok("stored and current")
	}
	fmt.Fprintf(stdout, "  Topics: %d  Residents: %d  Admin session: %t\n", len(doc), doc.ResidentCount(), st.IsAdmin())
	fmt.Fprintln(stdout)

	// Schema validation
	schema := cfg.SchemaFile
	if schema == "" {
		schema = "(bundled)"
	}
	fmt.Fprintf(stdout, "Schema: %s\n", schema)
	result := curriculum.Validate(doc, curriculum.ValidationOptions{SchemaPath: cfg.SchemaFile})
	for _, w := range result.Warnings {
		if *verbose || !result.UsedSchema {
			warn("%s", w)
		}
	}
	if result.Valid {
		ok("document valid")
	} else {
		for _, err := range result.Errors {
			fail("%v", err)
		}
	}
	if *verbose && len(result.Warnings) > 0 && result.UsedSchema {
		fmt.Fprintf(stdout, "  %d warnings\n", len(result.Warnings))
	}
	fmt.Fprintln(stdout)

	return doctorResult(allOK)
}

func doctorResult(allOK bool) error {
	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed.")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}
