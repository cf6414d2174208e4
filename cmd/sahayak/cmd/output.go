package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/domain/router"
	"github.com/corey/sahayak/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorGray    = "\033[90m"
)

// snippetLen caps the one-line text shown under a scheme in listings.
const snippetLen = 100

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// formatSearchResult formats a SearchResult for terminal display.
//
//	⚡ 3 schemes │ 412µs
//	  pm-kisan  PM Kisan Samman Nidhi  ★  #agriculture  150
//	    Income support of Rs 6000 per year...
func formatSearchResult(result *socket.SearchResult, countOnly bool) string {
	if countOnly {
		return fmt.Sprintf("%s⚡ %d schemes%s\n", colorBold, result.Count, colorReset)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d schemes%s", colorBold, len(result.Hits), colorReset))
	if result.Elapsed != "" {
		sb.WriteString(" │ " + result.Elapsed)
	}
	sb.WriteString("\n")

	for _, hit := range result.Hits {
		writeSchemeLine(&sb, hit.Scheme)
		sb.WriteString(fmt.Sprintf("  %s%d%s\n", colorGray, hit.Score, colorReset))
		writeSnippet(&sb, hit.Scheme)
	}
	return sb.String()
}

// formatSchemes formats a scheme listing.
func formatSchemes(schemes []*ports.SchemeRecord, title string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d schemes%s", colorBold, len(schemes), colorReset))
	if title != "" {
		sb.WriteString(" │ " + title)
	}
	sb.WriteString("\n")
	for _, s := range schemes {
		writeSchemeLine(&sb, s)
		sb.WriteString("\n")
		writeSnippet(&sb, s)
	}
	return sb.String()
}

func writeSchemeLine(sb *strings.Builder, s *ports.SchemeRecord) {
	sb.WriteString(fmt.Sprintf("  %s%s%s  %s", colorCyan, s.ID, colorReset, s.Name))
	if s.IsPopular {
		sb.WriteString(fmt.Sprintf("  %s★%s", colorYellow, colorReset))
	}
	if s.IsStateSpecific && s.State != "" {
		sb.WriteString(fmt.Sprintf("  %s@%s%s", colorMagenta, s.State, colorReset))
	}
	for _, c := range s.Categories {
		sb.WriteString(fmt.Sprintf("  %s#%s%s", colorGreen, c, colorReset))
	}
}

func writeSnippet(sb *strings.Builder, s *ports.SchemeRecord) {
	text := s.BenefitsText
	if text == "" {
		text = s.DetailsText
	}
	if text == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("    %s%s%s\n", colorGray, truncate(text, snippetLen), colorReset))
}

// formatScheme renders a full scheme card. The intent picks which section
// leads; the rest follow in a fixed order.
func formatScheme(s *ports.SchemeRecord, intent router.Intent) string {
	type section struct {
		title string
		text  string
	}
	sections := []section{
		{"Benefits", s.BenefitsText},
		{"Eligibility", s.EligibilityText},
		{"How to apply", s.ApplicationText},
		{"Documents", s.DocumentsText},
		{"Details", s.DetailsText},
	}
	lead := map[router.Intent]string{
		router.IntentEligibility: "Eligibility",
		router.IntentDocuments:   "Documents",
		router.IntentApply:       "How to apply",
		router.IntentStatus:      "Benefits",
	}[intent]
	ordered := make([]section, 0, len(sections))
	for _, sec := range sections {
		if sec.title == lead {
			ordered = append(ordered, sec)
		}
	}
	for _, sec := range sections {
		if sec.title != lead {
			ordered = append(ordered, sec)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s%s%s\n", colorBold, s.Name, colorReset))
	meta := []string{s.Level}
	if s.IsStateSpecific && s.State != "" {
		meta = append(meta, s.State)
	}
	meta = append(meta, strings.Join(s.Categories, ", "))
	sb.WriteString(fmt.Sprintf("  %s%s%s\n", colorGray, strings.Join(meta, " · "), colorReset))

	for _, sec := range ordered {
		if sec.text == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n  %s%s%s\n", colorCyan, sec.title, colorReset))
		sb.WriteString(indent(sec.text, "    "))
	}
	return sb.String()
}

// formatReply renders a routed chat reply.
func formatReply(res *socket.AskResult) string {
	r := res.Reply
	switch r.Kind {
	case router.KindScheme:
		if s := r.Scheme(); s != nil {
			return formatScheme(s, r.Intent)
		}
	case router.KindCategory, router.KindResults:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s%s%s\n", colorBold, res.Headline, colorReset))
		for i, s := range r.Schemes {
			sb.WriteString(fmt.Sprintf("  %d. %s%s%s\n", i+1, colorCyan, s.Name, colorReset))
			writeSnippet(&sb, s)
		}
		return sb.String()
	case router.KindNoEligible, router.KindSuggestions:
		return fmt.Sprintf("%s%s%s\n", colorYellow, res.Headline, colorReset)
	}
	return res.Headline + "\n"
}

// formatEligible renders an eligibility check.
func formatEligible(res *socket.EligibleResult, verbose bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ eligible for %d schemes%s", colorBold, res.Count, colorReset))
	if n := len(res.Excluded); n > 0 {
		sb.WriteString(fmt.Sprintf(" │ %d excluded", n))
	}
	sb.WriteString("\n")
	for _, s := range res.Eligible {
		sb.WriteString(fmt.Sprintf("  %s✓%s ", colorGreen, colorReset))
		writeSchemeLine(&sb, s)
		sb.WriteString("\n")
	}
	if verbose {
		for _, ex := range res.Excluded {
			sb.WriteString(fmt.Sprintf("  %s✗%s %s  %s%s: %s%s\n",
				colorRed, colorReset, ex.Name, colorGray, ex.Decision.Gate, ex.Decision.Reason, colorReset))
		}
	}
	for _, id := range res.Unknown {
		sb.WriteString(fmt.Sprintf("  %s? %s not found%s\n", colorYellow, id, colorReset))
	}
	return sb.String()
}

// formatCategories renders the category table.
func formatCategories(cats []socket.CategoryInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d categories%s\n", colorBold, len(cats), colorReset))
	for _, c := range cats {
		sb.WriteString(fmt.Sprintf("  %s %s%-14s%s %-28s %s%d%s\n",
			c.Icon, colorCyan, c.Key, colorReset, c.Name, colorGray, c.Count, colorReset))
	}
	return sb.String()
}

// formatStates renders the state table. withSchemesOnly hides states with no
// state-specific schemes in the corpus.
func formatStates(states []socket.StateInfo, withSchemesOnly bool) string {
	var sb strings.Builder
	shown := 0
	for _, s := range states {
		if withSchemesOnly && s.Schemes == 0 {
			continue
		}
		shown++
		sb.WriteString(fmt.Sprintf("  %s%-4s%s %s%-24s%s %-26s %s%d%s\n",
			colorGray, s.Code, colorReset, colorCyan, s.Key, colorReset, s.Name, colorGray, s.Schemes, colorReset))
	}
	return fmt.Sprintf("%s⚡ %d states%s\n", colorBold, shown, colorReset) + sb.String()
}

// formatProfile renders a saved profile and settings.
func formatProfile(p *ports.UserProfile, st *ports.Settings) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ profile%s\n", colorBold, colorReset))
	if p == nil {
		sb.WriteString(fmt.Sprintf("  %snot set%s\n", colorGray, colorReset))
	} else {
		sb.WriteString(fmt.Sprintf("  State:       %s\n", p.State))
		sb.WriteString(fmt.Sprintf("  Gender:      %s\n", p.Gender))
		sb.WriteString(fmt.Sprintf("  Age:         %d\n", p.AgeYears))
		sb.WriteString(fmt.Sprintf("  Occupation:  %s\n", p.Occupation))
		sb.WriteString(fmt.Sprintf("  Category:    %s\n", strings.ToUpper(p.CasteCategory)))
		if p.AnnualIncome > 0 {
			sb.WriteString(fmt.Sprintf("  Income:      Rs %d\n", p.AnnualIncome))
		}
	}
	if st != nil {
		state := st.State
		if state == "" {
			state = "all India"
		}
		mode := colorGray + "off" + colorReset
		if st.EligibleOnly {
			mode = colorGreen + "on" + colorReset
		}
		sb.WriteString(fmt.Sprintf("%s⚡ settings%s\n", colorBold, colorReset))
		sb.WriteString(fmt.Sprintf("  State:       %s\n", state))
		sb.WriteString(fmt.Sprintf("  Eligibility: %s\n", mode))
		if st.Lang != "" {
			sb.WriteString(fmt.Sprintf("  Language:    %s\n", st.Lang))
		}
	}
	return sb.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ sahayak daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:      %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Schemes:     %d\n", h.Corpus.Schemes))
	sb.WriteString(fmt.Sprintf("  Categories:  %d\n", h.Corpus.Categories))
	sb.WriteString(fmt.Sprintf("  States:      %d\n", h.Corpus.States))
	source := h.Corpus.Source
	if h.Corpus.FromCache {
		source += " (cache)"
	}
	sb.WriteString(fmt.Sprintf("  Source:      %s\n", source))
	if h.Corpus.LoadedAt > 0 {
		sb.WriteString(fmt.Sprintf("  Loaded:      %s\n", time.Unix(h.Corpus.LoadedAt, 0).Format(time.RFC3339)))
	}
	sb.WriteString(fmt.Sprintf("  Uptime:      %s\n", h.Uptime))
	return sb.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func indent(s, prefix string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		sb.WriteString(prefix)
		sb.WriteString(strings.TrimSpace(line))
		sb.WriteString("\n")
	}
	return sb.String()
}
