package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/curriculum/internal/auth"
	"github.com/nibzard/curriculum/internal/datadir"
	"github.com/nibzard/curriculum/internal/export"
)

// isolate points the user config lookup at an empty home, clears
// CURRICULUM_* variables and runs the test from an empty project directory.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, f := range fields(&Config{}) {
		t.Setenv(f.env, "")
	}
	t.Setenv(EnvEphemeral, "")
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(project); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", project)
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	return home, project
}

// load runs LoadWithSources with a fresh flag set and returns the config.
func load(t *testing.T, args []string) (*Config, error) {
	t.Helper()
	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.DataDir != datadir.Dir {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, datadir.Dir)
	}
	if cfg.DocumentKey != "informaticsTopics" {
		t.Errorf("DocumentKey: got %q, want informaticsTopics", cfg.DocumentKey)
	}
	if cfg.AdminKey != "isAdmin" {
		t.Errorf("AdminKey: got %q, want isAdmin", cfg.AdminKey)
	}
	if cfg.AdminPassword != auth.DefaultPassword {
		t.Errorf("AdminPassword: got %q, want %q", cfg.AdminPassword, auth.DefaultPassword)
	}
	if cfg.ExportFile != export.DefaultFileName || cfg.ExportSheet != export.DefaultSheet {
		t.Errorf("export: got %q/%q", cfg.ExportFile, cfg.ExportSheet)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("defaults should validate, got %v", errs)
	}
}

func TestLoadDefaults(t *testing.T) {
	_, project := isolate(t)

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	project, _ = filepath.EvalSymlinks(project)
	root, _ := filepath.EvalSymlinks(cfg.ProjectRoot)
	if root != project {
		t.Errorf("ProjectRoot: got %q, want %q", root, project)
	}
	if want := filepath.Join(cfg.ProjectRoot, datadir.Dir); cfg.DataDir != want {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, want)
	}
	if cfg.SchemaFile != "" || cfg.CatalogFile != "" || cfg.LogDir != "" {
		t.Errorf("empty paths should stay empty: %+v", cfg)
	}
	for key, src := range cws.Sources {
		if src != SourceDefault {
			t.Errorf("source of %s: got %q, want default", key, src)
		}
	}
	if cws.GetConfigFile() != "" {
		t.Errorf("GetConfigFile: got %q, want none", cws.GetConfigFile())
	}
}

func TestLayering(t *testing.T) {
	home, _ := isolate(t)

	writeFile(t, datadir.ConfigPath(home), `
document_key = "user-doc"
admin_key = "user-admin"
locale = "de"
log_level = "info"
`)
	writeFile(t, datadir.ConfigFile, `
admin_key = "project-admin"
log_format = "json"
mystery = 1
`)
	t.Setenv("CURRICULUM_LOG_LEVEL", "debug")
	t.Setenv("CURRICULUM_LOG_TIMESTAMPS", "yes")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"-locale", "sv", "show", "-x"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	tests := []struct {
		key    string
		got    string
		want   string
		source ConfigSource
	}{
		{"document_key", cfg.DocumentKey, "user-doc", SourceUserFile},
		{"admin_key", cfg.AdminKey, "project-admin", SourceProjFile},
		{"log_format", cfg.LogFormat, "json", SourceProjFile},
		{"log_level", cfg.LogLevel, "debug", SourceEnv},
		{"locale", cfg.Locale, "sv", SourceFlag},
		{"export_sheet", cfg.ExportSheet, export.DefaultSheet, SourceDefault},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.key, tt.got, tt.want)
		}
		if cws.Sources[tt.key] != tt.source {
			t.Errorf("%s source: got %q, want %q", tt.key, cws.Sources[tt.key], tt.source)
		}
	}
	if !cfg.LogTimestamps || cws.Sources["log_timestamps"] != SourceEnv {
		t.Errorf("log_timestamps: got %v from %q", cfg.LogTimestamps, cws.Sources["log_timestamps"])
	}

	if got := fs.Args(); len(got) != 2 || got[0] != "show" {
		t.Errorf("remaining args: got %v", got)
	}
	if cws.GetConfigFile() != datadir.ConfigFile {
		t.Errorf("GetConfigFile: got %q, want %q", cws.GetConfigFile(), datadir.ConfigFile)
	}
	if len(cws.Unknown) != 1 || cws.Unknown[0] != "mystery" {
		t.Errorf("Unknown: got %v, want [mystery]", cws.Unknown)
	}
}

func TestOSConfigDirFallback(t *testing.T) {
	home, _ := isolate(t)
	if osUserConfigDir() == "" {
		t.Skip("no OS config dir on this platform")
	}
	writeFile(t, filepath.Join(osUserConfigDir(), datadir.AppName, datadir.ConfigFile), `export_sheet = "Residents"`)

	cfg, err := load(t, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExportSheet != "Residents" {
		t.Errorf("ExportSheet: got %q, want Residents (home %s)", cfg.ExportSheet, home)
	}
}

func TestHiddenProjectFile(t *testing.T) {
	isolate(t)
	writeFile(t, datadir.HiddenConfigFile, `catalog_file = "topics.jsonc"`)

	cfg, err := load(t, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(cfg.ProjectRoot, "topics.jsonc"); cfg.CatalogFile != want {
		t.Errorf("CatalogFile: got %q, want %q", cfg.CatalogFile, want)
	}
}

func TestInvalidConfigFile(t *testing.T) {
	isolate(t)
	writeFile(t, datadir.ConfigFile, `data_dir = [`)

	if _, err := load(t, nil); err == nil || !strings.Contains(err.Error(), "project config file") {
		t.Errorf("expected project config error, got %v", err)
	}
}

func TestEphemeral(t *testing.T) {
	isolate(t)

	cfg, err := load(t, []string{"-ephemeral"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Ephemeral {
		t.Error("-ephemeral flag not applied")
	}

	t.Setenv(EnvEphemeral, "on")
	cfg, err = load(t, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Ephemeral {
		t.Error("CURRICULUM_EPHEMERAL not applied")
	}
}

func TestBoolFromString(t *testing.T) {
	for in, want := range map[string]bool{
		"1": true, "true": true, " YES ": true, "on": true,
		"0": false, "false": false, "no": false, "": false, "maybe": false,
	} {
		if got := boolFromString(in); got != want {
			t.Errorf("boolFromString(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("CURRICULUM_TEST_DIR", filepath.Join(root, "srv"))

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/state", filepath.Join(home, "state")},
		{"~state", filepath.Join(root, "~state")},
		{"$CURRICULUM_TEST_DIR/x", filepath.Join(root, "srv", "x")},
		{"plain", filepath.Join(root, "plain")},
		{"./a/../b", filepath.Join(root, "b")},
		{filepath.Join(home, "abs"), filepath.Join(home, "abs")},
	}
	for _, tt := range tests {
		if got := resolvePath(root, tt.in); got != tt.want {
			t.Errorf("resolvePath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathsResolvedAgainstProjectRoot(t *testing.T) {
	home, _ := isolate(t)
	writeFile(t, datadir.ConfigFile, "data_dir = \"~/curriculum-data\"\nexport_file = \"out/plan.xlsx\"\n")

	cfg, err := load(t, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(home, "curriculum-data"); cfg.DataDir != want {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, want)
	}
	if want := filepath.Join(cfg.ProjectRoot, "out", "plan.xlsx"); cfg.ExportFile != want {
		t.Errorf("ExportFile: got %q, want %q", cfg.ExportFile, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty document key", func(c *Config) { c.DocumentKey = " " }, "document_key is empty"},
		{"same keys", func(c *Config) { c.AdminKey = c.DocumentKey }, "must differ"},
		{"bad locale", func(c *Config) { c.Locale = "not a locale!" }, "invalid locale"},
		{"bad export ext", func(c *Config) { c.ExportFile = "out.ods" }, "export_file"},
		{"empty sheet", func(c *Config) { c.ExportSheet = "" }, "export_sheet"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("expected a validation error")
			}
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", errs, tt.want)
			}
		})
	}
}

func TestEntriesMaskSecrets(t *testing.T) {
	isolate(t)
	t.Setenv("CURRICULUM_ADMIN_PASSWORD", "hunter2")

	cws, err := LoadWithSources(nil, nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	entries := cws.Entries()
	if len(entries) != len(configFields()) {
		t.Fatalf("entries: got %d, want %d", len(entries), len(configFields()))
	}
	for _, e := range entries {
		switch e.Key {
		case "admin_password":
			if e.Value != "********" || e.Source != SourceEnv {
				t.Errorf("admin_password entry: %+v", e)
			}
		case "admin_password_hash":
			if e.Value != "" {
				t.Errorf("empty hash should stay empty, got %q", e.Value)
			}
		case "log_caller":
			if e.Value != "false" {
				t.Errorf("log_caller: got %q", e.Value)
			}
		}
	}
}

func TestExampleConfigParses(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		t.Errorf("example config has unknown keys: %v", undecoded)
	}
	if cfg.DocumentKey != DefaultDocumentKey || cfg.LogLevel != DefaultLogLevel {
		t.Errorf("example config drifted from defaults: %+v", cfg)
	}
}
