package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/ports"
)

// =============================================================================
// CLI: commands run in process against a temp home with no daemon
// Expectation: load caches the corpus, later commands answer from the cache,
// and profile/state/mode persist between invocations.
// =============================================================================

const cliCSV = "scheme_name,slug,details,benefits,eligibility,application,documents,level,schemeCategory,_,tags\n" +
	`PM Kisan Samman Nidhi,pm-kisan,"Income support, paid in three instalments",Rs 6000 per year,Landholding farmer families,Apply online,Aadhaar,Central,Agriculture,,"farmer,income"` + "\n" +
	`Raitha Siri,raitha-siri,Millet incentive for Karnataka growers,Rs 10000 per hectare,Millet farmers,Raitha Samparka Kendra,Land records,State,Agriculture,,millets` + "\n" +
	`Vridhapya Pension,kerala-pension,Monthly pension for senior citizens of Kerala,Rs 1600 per month,Age above 60 years,Panchayat office,Age proof,State,Social Welfare,,pension` + "\n"

type cliEnv struct {
	home string
	csv  string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := cliEnv{home: filepath.Join(dir, "home"), csv: filepath.Join(dir, "schemes.csv")}
	require.NoError(t, os.WriteFile(env.csv, []byte(cliCSV), 0644))
	t.Setenv(app.EnvHome, env.home)
	t.Setenv(app.EnvCSV, "")
	t.Setenv(app.EnvDefaultState, "")
	t.Setenv(app.EnvLang, "")
	return env
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through package-level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args and returns what it printed to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w

	out := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		out <- buf.String()
	}()

	rootCmd.SetArgs(args)
	rootCmd.SetErr(io.Discard)
	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = stdout
	return <-out, runErr
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, append(args, "--json")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestCLI_LoadThenSearch(t *testing.T) {
	env := newCLIEnv(t)

	var loaded socket.ReloadResult
	runJSON(t, &loaded, "load", env.csv)
	assert.Equal(t, 3, loaded.Schemes)
	assert.Equal(t, env.csv, loaded.Source)

	// The CSV is gone; search answers from the cache.
	require.NoError(t, os.Remove(env.csv))
	var found socket.SearchResult
	runJSON(t, &found, "search", "pm", "kisan")
	require.NotEmpty(t, found.Hits)
	assert.Equal(t, "pm-kisan", found.Hits[0].Scheme.ID)

	out, err := run(t, "search", "kisan", "--count")
	require.NoError(t, err)
	assert.Contains(t, out, "schemes")
}

func TestCLI_NoCorpus(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, "search", "kisan")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNoCorpus)
	assert.Contains(t, err.Error(), "sahayak load")
}

func TestCLI_CSVFlag(t *testing.T) {
	env := newCLIEnv(t)

	var listed socket.SchemesResult
	runJSON(t, &listed, "browse", "--csv", env.csv, "--category", "agriculture", "--all-states")
	assert.Equal(t, 2, listed.Count)

	var card ports.SchemeRecord
	runJSON(t, &card, "browse", "kerala-pension", "--csv", env.csv)
	assert.Equal(t, "kerala", card.State)
}

func TestCLI_ProfileAndEligible(t *testing.T) {
	env := newCLIEnv(t)
	_, err := run(t, "load", env.csv)
	require.NoError(t, err)

	_, err = run(t, "profile", "set", "--state", "odisha", "--gender", "male")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrInvalidProfile)
	assert.Contains(t, err.Error(), "--age")

	_, err = run(t, "profile", "set", "--state", "Odisha", "--gender", "male", "--age", "40",
		"--occupation", "farmer", "--caste", "general")
	require.NoError(t, err)

	var res socket.EligibleResult
	runJSON(t, &res, "eligible")
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "pm-kisan", res.Eligible[0].ID)

	// Flags overlay the saved profile without saving.
	runJSON(t, &res, "eligible", "--state", "karnataka", "raitha-siri")
	assert.Equal(t, 1, res.Count)

	var shown struct {
		Profile *ports.UserProfile `json:"profile"`
	}
	runJSON(t, &shown, "profile", "show")
	require.NotNil(t, shown.Profile)
	assert.Equal(t, "odisha", shown.Profile.State)

	_, err = run(t, "profile", "clear")
	require.NoError(t, err)
	_, err = run(t, "eligible")
	assert.ErrorContains(t, err, "no saved profile")
}

func TestCLI_StateAndMode(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, "state", "set", "Karnataka")
	require.NoError(t, err)
	_, err = run(t, "mode", "on")
	require.NoError(t, err)

	var shown struct {
		Settings ports.Settings `json:"settings"`
	}
	runJSON(t, &shown, "profile", "show")
	assert.Equal(t, "karnataka", shown.Settings.State)
	assert.True(t, shown.Settings.EligibleOnly)

	_, err = run(t, "state", "set", "atlantis")
	assert.ErrorContains(t, err, "unknown state")
	_, err = run(t, "mode", "maybe")
	assert.Error(t, err)

	_, err = run(t, "state", "clear")
	require.NoError(t, err)
	var cleared struct {
		Settings ports.Settings `json:"settings"`
	}
	runJSON(t, &cleared, "profile", "show")
	assert.Empty(t, cleared.Settings.State)
	assert.True(t, cleared.Settings.EligibleOnly)
}

func TestCLI_AskUsesSavedState(t *testing.T) {
	env := newCLIEnv(t)
	_, err := run(t, "load", env.csv)
	require.NoError(t, err)
	_, err = run(t, "state", "set", "kerala")
	require.NoError(t, err)

	var res socket.AskResult
	runJSON(t, &res, "ask", "farmer", "schemes")
	assert.Equal(t, []string{"pm-kisan"}, schemeIDs(res.Reply.Schemes), "karnataka scheme hidden under kerala")

	_, err = run(t, "ask", "hello", "--lang", "fr")
	assert.ErrorContains(t, err, "unsupported language")
}

func TestCLI_Wipe(t *testing.T) {
	env := newCLIEnv(t)
	_, err := run(t, "load", env.csv)
	require.NoError(t, err)

	_, err = run(t, "wipe", "--force")
	require.NoError(t, err)

	_, err = run(t, "search", "kisan")
	assert.ErrorIs(t, err, ports.ErrNoCorpus, "cache wiped and no CSV configured")
}

func TestCLI_HealthWithoutDaemon(t *testing.T) {
	newCLIEnv(t)
	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func schemeIDs(schemes []*ports.SchemeRecord) []string {
	out := make([]string, len(schemes))
	for i, s := range schemes {
		out[i] = s.ID
	}
	return out
}
