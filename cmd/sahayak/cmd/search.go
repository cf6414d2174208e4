package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// listFlags are the corpus filters shared by search and browse.
type listFlags struct {
	category  string
	state     string
	stateOnly bool
	allStates bool
	popular   bool
	limit     int
}

func (f *listFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.category, "category", "", "Only schemes in this category (see: sahayak categories)")
	fs.StringVar(&f.state, "state", "", "State key; central schemes are kept unless --state-only (default: saved state)")
	fs.BoolVar(&f.stateOnly, "state-only", false, "Only schemes specific to --state")
	fs.BoolVar(&f.allStates, "all-states", false, "Ignore the state filter")
	fs.BoolVar(&f.popular, "popular", false, "Only popular schemes")
	fs.IntVarP(&f.limit, "limit", "n", 0, "Maximum number of schemes (0: default)")
}

// options builds SearchOptions, falling back to the saved state.
func (f *listFlags) options(b backend) ports.SearchOptions {
	opts := ports.SearchOptions{
		Category:     strings.ToLower(f.category),
		State:        strings.ToLower(strings.TrimSpace(f.state)),
		StateOnly:    f.stateOnly,
		ExcludeState: f.allStates,
		Popular:      f.popular,
		Limit:        f.limit,
	}
	if opts.State == "" && !opts.ExcludeState {
		if st, err := b.Settings(); err == nil {
			opts.State = st.State
		}
	}
	return opts
}

var (
	searchFlags listFlags
	searchCount bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank schemes against a free-text query",
	Long: "Scores every scheme by name, category, eligibility and tag matches.\n" +
		"Aliases such as \"pm kisan\" or \"ayushman\" resolve to their scheme; misspelled\n" +
		"names fall back to fuzzy matching.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchFlags.register(searchCmd.Flags())
	searchCmd.Flags().BoolVarP(&searchCount, "count", "c", false, "Only print the number of hits")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	return withBackend(true, func(b backend, _ app.Config) error {
		result, err := b.Search(query, searchFlags.options(b))
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(result)
		}
		fmt.Print(formatSearchResult(result, searchCount))
		return nil
	})
}

var browseFlags listFlags

var browseCmd = &cobra.Command{
	Use:   "browse [id]",
	Short: "List schemes, or show one scheme in full",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	browseFlags.register(browseCmd.Flags())
}

func runBrowse(cmd *cobra.Command, args []string) error {
	return withBackend(true, func(b backend, _ app.Config) error {
		if len(args) == 1 {
			s, err := b.Scheme(args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(s)
			}
			fmt.Print(formatScheme(s, ""))
			return nil
		}

		opts := browseFlags.options(b)
		result, err := b.Schemes(opts)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(result)
		}
		fmt.Print(formatSchemes(result.Schemes, describeOptions(opts)))
		return nil
	})
}

// describeOptions summarizes active filters for a listing header.
func describeOptions(opts ports.SearchOptions) string {
	var parts []string
	if opts.Category != "" {
		parts = append(parts, "#"+opts.Category)
	}
	if opts.State != "" && !opts.ExcludeState {
		s := "@" + opts.State
		if opts.StateOnly {
			s += " only"
		}
		parts = append(parts, s)
	}
	if opts.Popular {
		parts = append(parts, "popular")
	}
	return strings.Join(parts, " ")
}
