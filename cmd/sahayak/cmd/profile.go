package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// profileFlags collect profile fields. Unset flags keep the base profile's values.
type profileFlags struct {
	state      string
	gender     string
	age        int
	occupation string
	caste      string
	income     int64
	fs         *pflag.FlagSet
}

func (f *profileFlags) register(fs *pflag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.state, "state", "", "State key, e.g. karnataka")
	fs.StringVar(&f.gender, "gender", "", "One of: "+strings.Join(ports.Genders(), ", "))
	fs.IntVar(&f.age, "age", 0, "Age in years (1-120)")
	fs.StringVar(&f.occupation, "occupation", "", "One of: "+strings.Join(ports.Occupations(), ", "))
	fs.StringVar(&f.caste, "caste", "", "One of: "+strings.Join(ports.Castes(), ", "))
	fs.Int64Var(&f.income, "income", 0, "Annual family income in rupees (0: not specified)")
}

// any reports whether at least one profile flag was given.
func (f *profileFlags) any() bool {
	for _, name := range []string{"state", "gender", "age", "occupation", "caste", "income"} {
		if f.fs.Changed(name) {
			return true
		}
	}
	return false
}

// apply overlays the given flags on base (which may be nil).
func (f *profileFlags) apply(base *ports.UserProfile) ports.UserProfile {
	var p ports.UserProfile
	if base != nil {
		p = *base
	}
	if f.fs.Changed("state") {
		p.State = f.state
	}
	if f.fs.Changed("gender") {
		p.Gender = f.gender
	}
	if f.fs.Changed("age") {
		p.AgeYears = f.age
	}
	if f.fs.Changed("occupation") {
		p.Occupation = f.occupation
	}
	if f.fs.Changed("caste") {
		p.CasteCategory = f.caste
	}
	if f.fs.Changed("income") {
		p.AnnualIncome = f.income
	}
	return p.Normalized()
}

// missingFields names the fields that keep p from being valid.
func missingFields(p ports.UserProfile) []string {
	var missing []string
	if strings.TrimSpace(p.State) == "" {
		missing = append(missing, "--state")
	}
	if !contains(ports.Genders(), p.Gender) {
		missing = append(missing, "--gender")
	}
	if p.AgeYears < 1 || p.AgeYears > 120 {
		missing = append(missing, "--age")
	}
	if !contains(ports.Occupations(), p.Occupation) {
		missing = append(missing, "--occupation")
	}
	if !contains(ports.Castes(), p.CasteCategory) {
		missing = append(missing, "--caste")
	}
	if p.AnnualIncome < 0 {
		missing = append(missing, "--income")
	}
	return missing
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the saved eligibility profile",
}

var profileSetFlags profileFlags

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save or update the eligibility profile",
	Long: "Updates the saved profile with the given fields. A new profile needs all of\n" +
		"--state, --gender, --age, --occupation and --caste.\n\n" +
		"  sahayak profile set --state karnataka --gender female --age 34 \\\n" +
		"      --occupation farmer --caste obc --income 180000",
	Args: cobra.NoArgs,
	RunE: runProfileSet,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved profile and settings",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileClear,
}

func init() {
	profileSetFlags.register(profileSetCmd.Flags())
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileClearCmd)
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	if !profileSetFlags.any() {
		return fmt.Errorf("nothing to set; see: sahayak profile set --help")
	}
	return withBackend(false, func(b backend, _ app.Config) error {
		saved, err := b.Profile()
		if err != nil {
			return err
		}
		p := profileSetFlags.apply(saved)
		if missing := missingFields(p); len(missing) > 0 {
			return fmt.Errorf("%w: missing or invalid %s", ports.ErrInvalidProfile, strings.Join(missing, ", "))
		}
		if err := b.SaveProfile(&p); err != nil {
			return err
		}
		if flagJSON {
			return printJSON(p)
		}
		fmt.Print(formatProfile(&p, nil))
		return nil
	})
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withBackend(false, func(b backend, _ app.Config) error {
		p, err := b.Profile()
		if err != nil {
			return err
		}
		st, err := b.Settings()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]any{"profile": p, "settings": st})
		}
		fmt.Print(formatProfile(p, st))
		return nil
	})
}

func runProfileClear(cmd *cobra.Command, args []string) error {
	return withBackend(false, func(b backend, _ app.Config) error {
		if err := b.ClearProfile(); err != nil {
			return err
		}
		fmt.Println("⚡ profile cleared")
		return nil
	})
}
