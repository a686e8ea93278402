package config

import "strconv"

// Entry is one setting as shown by the config command.
type Entry struct {
	Key    string
	Value  string
	Source ConfigSource
}

// Entries lists every setting in declaration order. Secrets are masked.
func (cws *ConfigWithSources) Entries() []Entry {
	fs := fields(cws.Config)
	out := make([]Entry, 0, len(fs))
	for _, f := range fs {
		var value string
		if f.boolean != nil {
			value = strconv.FormatBool(*f.boolean)
		} else {
			value = *f.str
		}
		if isSecret(f.key) && value != "" {
			value = "********"
		}
		out = append(out, Entry{Key: f.key, Value: value, Source: cws.Sources[f.key]})
	}
	return out
}

func isSecret(key string) bool {
	return key == "admin_password" || key == "admin_password_hash"
}
