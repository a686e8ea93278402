// Package cmd implements the CLI command structure for curriculum.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/curriculum/internal/auth"
	"github.com/nibzard/curriculum/internal/config"
	"github.com/nibzard/curriculum/internal/curriculum"
	"github.com/nibzard/curriculum/internal/datadir"
	"github.com/nibzard/curriculum/internal/export"
	"github.com/nibzard/curriculum/internal/kv"
	"github.com/nibzard/curriculum/internal/logging"
	"github.com/nibzard/curriculum/internal/store"
	"github.com/nibzard/curriculum/internal/ui"
	"github.com/nibzard/curriculum/internal/views"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// env is what every subcommand receives.
type env struct {
	ctx    context.Context
	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
}

type command struct {
	name    string
	args    string
	summary string
	run     func(e *env, args []string) error
}

func commands() []command {
	return []command{
		{"show", "", "Print the topic tree", showCommand},
		{"coverage", "", "Print the resident coverage summary", coverageCommand},
		{"export", "", "Write assignments to a spreadsheet", exportCommand},
		{"expand", "<topic>", "Expand or collapse a topic", expandCommand},
		{"add-resident", "<topic>", "Add a resident to a topic", addResidentCommand},
		{"remove-resident", "<topic> <resident>", "Remove a resident", removeResidentCommand},
		{"set-name", "<topic> <resident> <name>", "Set a resident's name", setNameCommand},
		{"set-due", "<topic> <resident> <date>", "Set a resident's due date", setDueCommand},
		{"toggle-subtopic", "<topic> <resident> <subtopic>", "Assign or unassign a subtopic", toggleSubtopicCommand},
		{"login", "", "Start the admin session", loginCommand},
		{"logout", "", "End the admin session", logoutCommand},
		{"migrate", "", "Rewrite the stored document in the current format", migrateCommand},
		{"doctor", "", "Check config, stored data and document validity", doctorCommand},
		{"tui", "", "Launch the terminal UI", tuiCommand},
		{"tail", "", "Print the latest run log", tailCommand},
		{"config", "", "Show effective configuration and where each value came from", configCommand},
		{"hash-password", "", "Print a bcrypt hash for admin_password_hash", hashPasswordCommand},
		{"version", "", "Show version information", nil},
		{"help", "", "Show this help message", nil},
	}
}

// Run executes the curriculum CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("curriculum", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Default to the TUI on a terminal and to show otherwise.
	subcommand := "show"
	if ui.IsTTY(stdout) {
		subcommand = "tui"
	}
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	}

	var run func(*env, []string) error
	for _, c := range commands() {
		if c.name == subcommand {
			run = c.run
			break
		}
	}
	if run == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}

	cfg := cws.Config
	runLogDir := cfg.LogDir
	if subcommand == "tail" {
		// tail reads run logs; it does not start one.
		runLogDir = ""
	}
	logger, closeLog, err := logging.Setup(stderr, logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
	}, runLogDir, cfg.ProjectRoot)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Debug("command", "name", subcommand, "args", remainingArgs)

	return run(&env{ctx: ctx, cws: cws, cfg: cfg, logger: logger}, remainingArgs)
}

// openStore opens the configured backend and loads the current state.
func (e *env) openStore() (*store.Store, error) {
	locale, err := e.cfg.LocaleTag()
	if err != nil {
		return nil, err
	}
	seed, err := curriculum.SeedFunc(e.cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	var backend kv.Store
	if e.cfg.Ephemeral {
		backend = kv.NewMemStore()
	} else {
		backend = kv.NewFileStore(e.cfg.DataDir)
	}

	return store.Open(backend, store.Options{
		DocumentKey: e.cfg.DocumentKey,
		AdminKey:    e.cfg.AdminKey,
		Seed:        seed,
		Gate:        e.cfg.Gate(),
		Logger:      e.logger,
		Locale:      locale,
	}), nil
}

// newFlagSet returns a subcommand flag set writing to stderr.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("curriculum "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parseArgs parses flags and checks the positional argument count.
func parseArgs(fs *flag.FlagSet, args []string, want ...string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) < len(want) {
		return nil, fmt.Errorf("missing %s", strings.Join(want[len(rest):], " "))
	}
	if len(rest) > len(want) {
		return nil, fmt.Errorf("unexpected arguments: %v", rest[len(want):])
	}
	return rest, nil
}

// showCommand prints the topic tree.
func showCommand(e *env, args []string) error {
	fs := newFlagSet("show")
	asJSON := fs.Bool("json", false, "Print the document as JSON")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	doc := st.Document()
	if *asJSON {
		data, err := curriculum.Encode(doc)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	fmt.Fprintln(stdout, ui.Title)
	fmt.Fprintln(stdout)
	for i, t := range doc {
		marker := "▸"
		if t.Expanded {
			marker = "▾"
		}
		fmt.Fprintf(stdout, "%s %d. %s [%s]\n", marker, i+1, t.Title, t.ID)
		if len(t.Subtopics) > 0 {
			fmt.Fprintln(stdout, "    Subtopics:")
			for j, sub := range t.Subtopics {
				fmt.Fprintf(stdout, "      %d. %s\n", j+1, sub)
			}
		}
		if len(t.Resources) > 0 {
			fmt.Fprintln(stdout, "    Resources:")
			for _, res := range t.Resources {
				if res.URL != "" {
					fmt.Fprintf(stdout, "      • %s <%s>\n", res.Name, res.URL)
				} else {
					fmt.Fprintf(stdout, "      • %s\n", res.Name)
				}
			}
		}
		if len(t.Residents) > 0 {
			fmt.Fprintln(stdout, "    Resident Assignments:")
			for j, r := range t.Residents {
				fmt.Fprintf(stdout, "      Resident #%d Name: %s\n", j+1, r.Name)
				if len(r.Subtopics) > 0 {
					fmt.Fprintf(stdout, "        Subtopics: %s\n", strings.Join(r.Subtopics, ", "))
				}
				if r.DueDate != "" {
					fmt.Fprintf(stdout, "        Due Date: %s\n", r.DueDate)
				}
			}
		}
	}
	return nil
}

// coverageCommand prints the coverage summary.
func coverageCommand(e *env, args []string) error {
	fs := newFlagSet("coverage")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Resident Coverage Summary")
	groups := st.Coverage()
	if len(groups) == 0 {
		fmt.Fprintln(stdout, "No assignments yet.")
		return nil
	}
	for _, g := range groups {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, g.Resident)
		for _, row := range g.Rows {
			fmt.Fprintf(stdout, "  • %s\n", row)
		}
	}
	return nil
}

// exportCommand writes the export rows to a file, or to stdout with -o -.
func exportCommand(e *env, args []string) error {
	fs := newFlagSet("export")
	out := fs.String("o", e.cfg.ExportFile, "Output file (- for stdout)")
	format := fs.String("format", "", "Output format (xlsx|csv, default from file extension)")
	sheet := fs.String("sheet", e.cfg.ExportSheet, "Worksheet name")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	f := export.FormatForPath(*out)
	if *format != "" {
		parsed, err := export.ParseFormat(*format)
		if err != nil {
			return err
		}
		f = parsed
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	rows := st.ExportRows()
	records := views.Records(rows)
	opts := export.Options{Format: f, Sheet: *sheet}

	if *out == "-" {
		err = export.Write(stdout, records, opts)
	} else {
		err = export.WriteFile(*out, records, opts)
	}
	if errors.Is(err, export.ErrNothingToExport) {
		fmt.Fprintln(stderr, "No assignments to export yet.")
		return err
	}
	if err != nil {
		return err
	}
	if *out != "-" {
		fmt.Fprintf(stdout, "Exported %d rows to %s\n", len(rows), *out)
	}
	e.logger.Info("exported", "rows", len(rows), "path", *out, "format", f)
	return nil
}

// loginCommand starts the admin session. The password comes from -password,
// or is read from stdin (without echo on a terminal).
func loginCommand(e *env, args []string) error {
	fs := newFlagSet("login")
	password := fs.String("password", "", "Admin password (prompted when empty)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	if st.IsAdmin() {
		fmt.Fprintln(stdout, "Already logged in as admin.")
		return nil
	}

	pw := *password
	if pw == "" {
		pw, err = auth.ReadPassword(stdin, stderr, "Admin password: ")
		if err != nil {
			return err
		}
	}
	if err := st.Login(pw); err != nil {
		if errors.Is(err, store.ErrIncorrectPassword) {
			fmt.Fprintln(stderr, "Incorrect password")
		}
		return err
	}
	if err := st.LastSaveError(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Fprintln(stdout, "Logged in as admin.")
	return nil
}

// logoutCommand ends the admin session.
func logoutCommand(e *env, args []string) error {
	fs := newFlagSet("logout")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	st.Logout()
	if err := st.LastSaveError(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Fprintln(stdout, "Logged out.")
	return nil
}

// migrateCommand rewrites the stored document in the current shape.
func migrateCommand(e *env, args []string) error {
	fs := newFlagSet("migrate")
	dryRun := fs.Bool("n", false, "Report only, do not write")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}

	report := st.MigrationReport()
	switch st.Origin() {
	case store.OriginSeed:
		fmt.Fprintln(stdout, "No stored document; writing the seed catalog.")
	case store.OriginMigrated:
		fmt.Fprintf(stdout, "Migrated: %d legacy residents, %d dropped subtopics, %d skipped entries.\n",
			report.LegacyResidents, report.DroppedSubtopics, report.SkippedTopics)
	default:
		fmt.Fprintln(stdout, "Stored document is already current.")
	}
	if *dryRun {
		return nil
	}
	if err := st.Save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Saved %d topics, %d residents.\n", len(st.Document()), st.Document().ResidentCount())
	return nil
}

// tuiCommand launches the TUI.
func tuiCommand(e *env, args []string) error {
	fs := newFlagSet("tui")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	return ui.RunTUI(e.ctx, st, ui.Options{
		ExportPath:  e.cfg.ExportFile,
		ExportSheet: e.cfg.ExportSheet,
	})
}

// tailCommand prints the latest run log.
func tailCommand(e *env, args []string) error {
	fs := newFlagSet("tail")
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	listRuns := fs.Bool("runs", false, "List run logs instead of printing one")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	base := e.cfg.LogDir
	if base == "" {
		base = datadir.LogsPath(e.cfg.ProjectRoot)
	}
	logDir, err := logging.FindLogDir(base, e.cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *listRuns {
		runs, err := logging.FindLogRuns(logDir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(stdout, "No log files found.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s  %s  %6d bytes\n", r.ModTime.Format("2006-01-02 15:04:05"), r.RunID, r.Size)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stderr, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stderr, "(Ctrl+C to stop)")
	}
	return logging.TailLog(e.ctx, stdout, logPath, *n, *follow)
}

// configCommand prints the effective configuration.
func configCommand(e *env, args []string) error {
	fs := newFlagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	file := e.cws.GetConfigFile()
	if file == "" {
		file = "(none)"
	}
	fmt.Fprintf(stdout, "Config file: %s\n\n", file)
	for _, entry := range e.cws.Entries() {
		value := entry.Value
		if value == "" {
			value = `""`
		}
		fmt.Fprintf(stdout, "%-20s %-40s (%s)\n", entry.Key, value, entry.Source)
	}
	for _, key := range e.cws.Unknown {
		fmt.Fprintf(stdout, "⚠️  unknown key %q ignored\n", key)
	}
	return nil
}

// hashPasswordCommand prints a bcrypt hash of a password read from stdin.
func hashPasswordCommand(e *env, args []string) error {
	fs := newFlagSet("hash-password")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	pw, err := auth.ReadPassword(stdin, stderr, "Password to hash: ")
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, hash)
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "curriculum version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Curriculum - "+ui.Title)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  curriculum [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		name := c.name
		if c.args != "" {
			name += " " + c.args
		}
		fmt.Fprintf(w, "  %-44s %s\n", name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Topics are given by position (1, 2, ...) or id; residents by position;")
	fmt.Fprintln(w, "subtopics by position or exact text.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(stderr)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options (use with 'export' command):")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Output file, - for stdout (default from export_file)")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (xlsx|csv)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options (use with 'tail' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
