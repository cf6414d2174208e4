package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/domain/eligibility"
	"github.com/corey/sahayak/internal/domain/router"
	"github.com/corey/sahayak/internal/ports"
)

var pmKisan = &ports.SchemeRecord{
	ID:              "pm-kisan",
	Name:            "PM Kisan Samman Nidhi",
	Level:           "Central",
	Categories:      []string{"agriculture"},
	IsPopular:       true,
	BenefitsText:    "Rs 6000 per year",
	EligibilityText: "Landholding farmer families",
	DocumentsText:   "Aadhaar, land records",
	ApplicationText: "Apply online",
}

func TestFormatSearchResult(t *testing.T) {
	res := &socket.SearchResult{Hits: []ports.Hit{{Scheme: pmKisan, Score: 150}}, Count: 1, Elapsed: "1ms"}

	out := formatSearchResult(res, false)
	assert.Contains(t, out, "1 schemes")
	assert.Contains(t, out, "pm-kisan")
	assert.Contains(t, out, "#agriculture")
	assert.Contains(t, out, "150")
	assert.Contains(t, out, "Rs 6000 per year")

	assert.NotContains(t, formatSearchResult(res, true), "pm-kisan")
}

func TestFormatScheme_IntentLeads(t *testing.T) {
	out := formatScheme(pmKisan, router.IntentDocuments)
	assert.Less(t, strings.Index(out, "Documents"), strings.Index(out, "Benefits"))

	out = formatScheme(pmKisan, router.IntentGeneric)
	assert.Less(t, strings.Index(out, "Benefits"), strings.Index(out, "Documents"))
	assert.NotContains(t, out, "Details", "empty sections are skipped")
}

func TestFormatReply(t *testing.T) {
	card := formatReply(&socket.AskResult{Reply: router.Reply{Kind: router.KindScheme, Schemes: []*ports.SchemeRecord{pmKisan}}})
	assert.Contains(t, card, "PM Kisan Samman Nidhi")

	list := formatReply(&socket.AskResult{
		Reply:    router.Reply{Kind: router.KindCategory, Label: "Farmer", Schemes: []*ports.SchemeRecord{pmKisan}},
		Headline: "Farmer Schemes:",
	})
	assert.Contains(t, list, "Farmer Schemes:")
	assert.Contains(t, list, "1. ")

	hello := formatReply(&socket.AskResult{Reply: router.Reply{Kind: router.KindGreeting}, Headline: "Hello!"})
	assert.Equal(t, "Hello!\n", hello)
}

func TestFormatEligible(t *testing.T) {
	res := &socket.EligibleResult{
		Eligible: []*ports.SchemeRecord{pmKisan},
		Excluded: []socket.Exclusion{{ID: "raitha-siri", Name: "Raitha Siri", Decision: eligibility.Decision{
			Gate: eligibility.GateState, Reason: "scheme is for karnataka, profile state is odisha",
		}}},
		Unknown: []string{"nope"},
		Count:   1,
	}

	out := formatEligible(res, false)
	assert.Contains(t, out, "eligible for 1 schemes")
	assert.Contains(t, out, "1 excluded")
	assert.NotContains(t, out, "Raitha Siri")
	assert.Contains(t, out, "nope not found")

	assert.Contains(t, formatEligible(res, true), "state: scheme is for karnataka")
}

func TestFormatStates_HidesEmpty(t *testing.T) {
	states := []socket.StateInfo{
		{Key: "karnataka", Name: "Karnataka", Code: "KA", Schemes: 2},
		{Key: "goa", Name: "Goa", Code: "GA"},
	}
	out := formatStates(states, true)
	assert.Contains(t, out, "1 states")
	assert.NotContains(t, out, "goa")
	assert.Contains(t, formatStates(states, false), "goa")
}

func TestFormatProfile(t *testing.T) {
	out := formatProfile(nil, &ports.Settings{})
	assert.Contains(t, out, "not set")
	assert.Contains(t, out, "all India")

	p := &ports.UserProfile{State: "kerala", Gender: "female", AgeYears: 64, Occupation: "retired", CasteCategory: "obc", AnnualIncome: 90000}
	out = formatProfile(p, nil)
	assert.Contains(t, out, "OBC")
	assert.Contains(t, out, "Rs 90000")
	assert.NotContains(t, out, "settings")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short text", truncate("short\n  text", 20))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "नमस्…", truncate("नमस्ते दुनिया", 5), "counts runes, not bytes")
}

func TestDescribeOptions(t *testing.T) {
	assert.Equal(t, "", describeOptions(ports.SearchOptions{}))
	assert.Equal(t, "#women @kerala only popular",
		describeOptions(ports.SearchOptions{Category: "women", State: "kerala", StateOnly: true, Popular: true}))
	assert.Equal(t, "#women", describeOptions(ports.SearchOptions{Category: "women", State: "kerala", ExcludeState: true}))
}

func TestProfileFlags_Overlay(t *testing.T) {
	var f profileFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{"--age", "65", "--occupation", "Retired"}))
	assert.True(t, f.any())

	base := &ports.UserProfile{State: "kerala", Gender: "female", AgeYears: 30, Occupation: "farmer", CasteCategory: "sc"}
	p := f.apply(base)
	assert.Equal(t, 65, p.AgeYears)
	assert.Equal(t, "retired", p.Occupation)
	assert.Equal(t, "kerala", p.State, "unset flags keep the base value")
	assert.Equal(t, 30, base.AgeYears, "base is not modified")
	assert.Empty(t, missingFields(p))

	assert.Equal(t, []string{"--state", "--gender", "--caste"}, missingFields(f.apply(nil)))
}
