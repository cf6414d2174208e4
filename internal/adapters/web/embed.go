// Package web serves the scheme directory JSON API and a small search page over HTTP.
// Binds to localhost by default; no auth.
package web

import "embed"

//go:embed static/index.html
var staticFS embed.FS
