package alias

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/corey/sahayak/internal/ports"
)

// Atlas file names inside the versioned directory.
const (
	AliasesFile          = "aliases.json"
	CategoryKeywordsFile = "category_keywords.json"
)

// Load reads the alias and category keyword tables from an fs.FS directory
// (normally atlas.FS, "v1") and builds the index.
func Load(fsys fs.FS, dir string, match ports.MatcherFactory) (*Index, error) {
	var entries []Entry
	if err := readJSON(fsys, path.Join(dir, AliasesFile), &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("alias table is empty in %q", dir)
	}

	var cats []CategoryKeywords
	if err := readJSON(fsys, path.Join(dir, CategoryKeywordsFile), &cats); err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("category keyword table is empty in %q", dir)
	}

	return New(entries, cats, match)
}

func readJSON(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
