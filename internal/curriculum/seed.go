package curriculum

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

//go:embed seed.json
var bundledSeed []byte

// Seed returns the built-in topic catalog.
func Seed() Document {
	doc, ok := Migrate(bundledSeed)
	if !ok {
		panic("curriculum: bundled seed catalog is not a topic array")
	}
	return doc
}

// LoadCatalog reads a topic catalog from path. The file is JSON and may
// contain comments and trailing commas.
func LoadCatalog(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog data in the same lenient JSON dialect as
// LoadCatalog. Residents listed in a catalog are kept, so a catalog can also
// serve as a starting document.
func ParseCatalog(data []byte) (Document, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	doc, ok := Migrate(standardized)
	if !ok {
		return nil, fmt.Errorf("parse catalog: expected an array of topics")
	}
	return doc, nil
}

// SeedFunc returns a function producing the catalog from path, or the
// built-in catalog when path is empty. The file is read once.
func SeedFunc(path string) (func() Document, error) {
	if path == "" {
		return Seed, nil
	}
	doc, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return doc.Clone, nil
}
