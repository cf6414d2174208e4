package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/ports"
	"github.com/spf13/cobra"
)

var (
	eligibleFlags    profileFlags
	eligibleCategory string
	eligibleVerbose  bool
)

var eligibleCmd = &cobra.Command{
	Use:   "eligible [scheme-id...]",
	Short: "List schemes a profile qualifies for",
	Long: "Evaluates the saved profile, with any profile flags applied on top, against\n" +
		"the given schemes or the whole corpus. Nothing is saved.\n\n" +
		"  sahayak eligible\n" +
		"  sahayak eligible --age 65 --occupation retired -v\n" +
		"  sahayak eligible pm-kisan raitha-siri",
	RunE: runEligible,
}

func init() {
	eligibleFlags.register(eligibleCmd.Flags())
	eligibleCmd.Flags().StringVar(&eligibleCategory, "category", "", "Only schemes in this category")
	eligibleCmd.Flags().BoolVarP(&eligibleVerbose, "verbose", "v", false, "Also list excluded schemes and the reason")
}

func runEligible(cmd *cobra.Command, args []string) error {
	return withBackend(true, func(b backend, _ app.Config) error {
		saved, err := b.Profile()
		if err != nil {
			return err
		}
		if saved == nil && !eligibleFlags.any() {
			return fmt.Errorf("no saved profile; run: sahayak profile set --help")
		}
		p := eligibleFlags.apply(saved)
		if missing := missingFields(p); len(missing) > 0 {
			return fmt.Errorf("%w: missing or invalid %s", ports.ErrInvalidProfile, strings.Join(missing, ", "))
		}

		result, err := b.Eligible(socket.EligibleParams{
			Profile: p,
			IDs:     args,
			Options: ports.SearchOptions{Category: strings.ToLower(eligibleCategory), ExcludeState: true},
		})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(result)
		}
		fmt.Print(formatEligible(result, eligibleVerbose))
		return nil
	})
}
