// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.curriculum/curriculum.toml or OS-specific config directory)
// 3. Project config file (curriculum.toml or .curriculum.toml in the working directory)
// 4. Environment variables (CURRICULUM_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.curriculum/curriculum.toml (preferred)
// - Windows: %APPDATA%\curriculum\curriculum.toml
// - macOS: ~/Library/Application Support/curriculum/curriculum.toml
// - Linux/BSD: $XDG_CONFIG_HOME/curriculum/curriculum.toml or ~/.config/curriculum/curriculum.toml
package config
