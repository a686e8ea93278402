package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Curriculum tracker configuration
# Values can be overridden by CURRICULUM_* environment variables or CLI flags

# Directory holding the stored document and admin flag
# (relative to the working directory, supports ~ expansion)
data_dir = ".curriculum"

# Storage keys
document_key = "informaticsTopics"
admin_key = "isAdmin"

# Admin password (default: admin123)
# admin_password = "admin123"
# A bcrypt hash takes precedence over admin_password.
# Generate one with: curriculum hash-password
# admin_password_hash = ""

# Topic catalog used when nothing is stored yet (JSON, comments allowed)
# catalog_file = "topics.jsonc"

# JSON schema used by doctor (bundled schema if empty)
# schema_file = ""

# Spreadsheet export (.xlsx or .csv)
export_file = "Lab_Informatics_Curriculum.xlsx"
export_sheet = "Curriculum"

# Language used to sort residents in the coverage summary
locale = "en"

# Logging
log_level = "warn"     # debug, info, warn, error
log_format = "text"    # text, json, logfmt
log_timestamps = false
log_caller = false
# Write per-run JSONL logs under this directory instead of stderr
# log_dir = "~/.curriculum/logs"
`
}
