package config

import (
	"flag"

	"github.com/nibzard/curriculum/internal/datadir"
)

// parseFlags defines the global flags on fs, parses args and records the
// flags that were set as SourceFlag.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet(datadir.AppName, flag.ContinueOnError)
	}

	flagToField := make(map[string]string)
	for _, f := range fields(cfg) {
		if f.flag == "" {
			continue
		}
		flagToField[f.flag] = f.key
		if f.boolean != nil {
			fs.BoolVar(f.boolean, f.flag, *f.boolean, f.usage)
		} else {
			fs.StringVar(f.str, f.flag, *f.str, f.usage)
		}
	}
	fs.BoolVar(&cfg.Ephemeral, "ephemeral", cfg.Ephemeral, "Keep state in memory only; nothing is saved")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(fl *flag.Flag) {
			if key, ok := flagToField[fl.Name]; ok {
				sources[key] = SourceFlag
			}
		})
	}
	return nil
}
