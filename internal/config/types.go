package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/nibzard/curriculum/internal/auth"
	"github.com/nibzard/curriculum/internal/datadir"
	"github.com/nibzard/curriculum/internal/export"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with the source of each field
// and the files that were read.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	UserFile    string
	ProjectFile string
	// Unknown lists keys found in config files that no field uses.
	Unknown []string
}

// Default values.
const (
	DefaultDocumentKey = "informaticsTopics"
	DefaultAdminKey    = "isAdmin"
	DefaultLocale      = "en"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// Config holds the full configuration.
type Config struct {
	// Storage
	DataDir     string `toml:"data_dir"`
	DocumentKey string `toml:"document_key"`
	AdminKey    string `toml:"admin_key"`

	// Admin gate
	AdminPassword     string `toml:"admin_password"`
	AdminPasswordHash string `toml:"admin_password_hash"`

	// Catalog and validation
	CatalogFile string `toml:"catalog_file"`
	SchemaFile  string `toml:"schema_file"`

	// Export
	ExportFile  string `toml:"export_file"`
	ExportSheet string `toml:"export_sheet"`

	// Coverage ordering
	Locale string `toml:"locale"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogDir        string `toml:"log_dir"`

	// Ephemeral keeps all state in memory for this run.
	Ephemeral bool `toml:"-"`

	// ProjectRoot is the working directory relative paths resolve against.
	ProjectRoot string `toml:"-"`
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = datadir.Dir
	cfg.DocumentKey = DefaultDocumentKey
	cfg.AdminKey = DefaultAdminKey
	cfg.AdminPassword = auth.DefaultPassword
	cfg.ExportFile = export.DefaultFileName
	cfg.ExportSheet = export.DefaultSheet
	cfg.Locale = DefaultLocale
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// LocaleTag parses the configured locale.
func (c *Config) LocaleTag() (language.Tag, error) {
	tag, err := language.Parse(strings.TrimSpace(c.Locale))
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

// Gate builds the admin password gate.
func (c *Config) Gate() *auth.Gate {
	return auth.NewGate(c.AdminPassword, c.AdminPasswordHash)
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() []error {
	var errs []error
	if strings.TrimSpace(c.DocumentKey) == "" {
		errs = append(errs, fmt.Errorf("document_key is empty"))
	}
	if strings.TrimSpace(c.AdminKey) == "" {
		errs = append(errs, fmt.Errorf("admin_key is empty"))
	}
	if c.DocumentKey != "" && c.DocumentKey == c.AdminKey {
		errs = append(errs, fmt.Errorf("document_key and admin_key must differ"))
	}
	if _, err := c.LocaleTag(); err != nil {
		errs = append(errs, err)
	}
	if _, err := export.ParseFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(c.ExportFile)), ".")); err != nil {
		errs = append(errs, fmt.Errorf("export_file: %w", err))
	}
	if strings.TrimSpace(c.ExportSheet) == "" {
		errs = append(errs, fmt.Errorf("export_sheet is empty"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("log_level %q (expected debug, info, warn, error)", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log_format %q (expected text, json, logfmt)", c.LogFormat))
	}
	return errs
}
