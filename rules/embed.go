// Package rules embeds the YAML eligibility rule pack.
// This is a standalone package with no imports to avoid circular dependencies.
//
// Each file holds a list of named rules for one gate. A rule either detects
// indicator phrases (keywords) or extracts a bound from scheme text (regex),
// and states what a profile must satisfy when it fires.
//
// Usage:
//
//	eligibility.LoadRulesFromFS(rules.FS, "eligibility")
package rules

import "embed"

//go:embed eligibility/*.yaml
var FS embed.FS
