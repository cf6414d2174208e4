// Package atlas embeds the static scheme vocabulary for compile-time inclusion.
// The atlas is a set of JSON files: scheme aliases (surface forms in Latin
// transliteration and Devanagari), ordered category keyword lists, the raw
// category map used by the loader, category metadata, and Indian states/UTs.
// Order inside every file is significant: first match wins.
//
// Usage:
//
//	alias.Load(atlas.FS, "v1")
//	corpus.LoadCatalog(atlas.FS, "v1")
package atlas

import "embed"

//go:embed v1/*.json
var FS embed.FS
