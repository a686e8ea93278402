package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// field binds one setting to its TOML key, environment variable and flag.
// Exactly one of str and boolean is set.
type field struct {
	key     string
	env     string
	flag    string
	usage   string
	str     *string
	boolean *bool
}

func fields(cfg *Config) []field {
	return []field{
		{key: "data_dir", env: "CURRICULUM_DATA_DIR", flag: "data-dir", usage: "Directory holding stored state", str: &cfg.DataDir},
		{key: "document_key", env: "CURRICULUM_DOCUMENT_KEY", flag: "document-key", usage: "Storage key of the topic document", str: &cfg.DocumentKey},
		{key: "admin_key", env: "CURRICULUM_ADMIN_KEY", flag: "admin-key", usage: "Storage key of the admin session flag", str: &cfg.AdminKey},
		{key: "admin_password", env: "CURRICULUM_ADMIN_PASSWORD", str: &cfg.AdminPassword},
		{key: "admin_password_hash", env: "CURRICULUM_ADMIN_PASSWORD_HASH", str: &cfg.AdminPasswordHash},
		{key: "catalog_file", env: "CURRICULUM_CATALOG", flag: "catalog", usage: "Topic catalog used when nothing is stored", str: &cfg.CatalogFile},
		{key: "schema_file", env: "CURRICULUM_SCHEMA", flag: "schema", usage: "JSON schema used by doctor (bundled schema if empty)", str: &cfg.SchemaFile},
		{key: "export_file", env: "CURRICULUM_EXPORT_FILE", usage: "", str: &cfg.ExportFile},
		{key: "export_sheet", env: "CURRICULUM_EXPORT_SHEET", usage: "", str: &cfg.ExportSheet},
		{key: "locale", env: "CURRICULUM_LOCALE", flag: "locale", usage: "Language used to sort resident names", str: &cfg.Locale},
		{key: "log_level", env: "CURRICULUM_LOG_LEVEL", flag: "log-level", usage: "Log level (debug, info, warn, error)", str: &cfg.LogLevel},
		{key: "log_format", env: "CURRICULUM_LOG_FORMAT", flag: "log-format", usage: "Log format (text, json, logfmt)", str: &cfg.LogFormat},
		{key: "log_timestamps", env: "CURRICULUM_LOG_TIMESTAMPS", flag: "log-timestamps", usage: "Show timestamps in logs", boolean: &cfg.LogTimestamps},
		{key: "log_caller", env: "CURRICULUM_LOG_CALLER", flag: "log-caller", usage: "Show caller location in logs", boolean: &cfg.LogCaller},
		{key: "log_dir", env: "CURRICULUM_LOG_DIR", flag: "log-dir", usage: "Write per-run JSONL logs under this directory", str: &cfg.LogDir},
	}
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	fs := fields(&Config{})
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.key
	}
	return names
}

// LoadWithSources loads configuration from defaults, config files, the
// environment and the flags in args, tracking the source of each value.
// Global flags are registered on fs before parsing, so fs.Args() holds the
// subcommand afterwards.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cfg := &Config{}
	cws := &ConfigWithSources{
		Config:  cfg,
		Sources: make(map[string]ConfigSource),
	}

	// 1. Defaults
	setDefaults(cfg)
	for _, name := range configFields() {
		cws.Sources[name] = SourceDefault
	}

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		unknown, err := loadConfigFile(cfg, path, cws.Sources, SourceUserFile)
		if err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
		cws.UserFile = path
		cws.Unknown = append(cws.Unknown, unknown...)
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		unknown, err := loadConfigFile(cfg, path, cws.Sources, SourceProjFile)
		if err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
		cws.ProjectFile = path
		cws.Unknown = append(cws.Unknown, unknown...)
	}

	// 4. Environment
	loadFromEnv(cfg, cws.Sources)

	// 5. Flags
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// loadConfigFile overlays the TOML file at path onto cfg. It returns the keys
// in the file that do not belong to any setting.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) ([]string, error) {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	for _, f := range fields(cfg) {
		if md.IsDefined(f.key) {
			sources[f.key] = source
		}
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return unknown, nil
}

// finalizeConfig expands and resolves paths against the working directory.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	for _, p := range []*string{&cfg.DataDir, &cfg.CatalogFile, &cfg.SchemaFile, &cfg.ExportFile, &cfg.LogDir} {
		*p = resolvePath(cfg.ProjectRoot, *p)
	}
	return nil
}
