package cmd

import (
	"fmt"

	"github.com/corey/sahayak/internal/app"
	"github.com/spf13/cobra"
)

var listLang string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List scheme categories with their sizes",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var statesAll bool

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List states and union territories",
	Long:  "Lists states that have state-specific schemes in the corpus; --all lists every state and UT.",
	Args:  cobra.NoArgs,
	RunE:  runStates,
}

func init() {
	categoriesCmd.Flags().StringVar(&listLang, "lang", "", "Display language: en or hi (default: saved or configured)")
	statesCmd.Flags().StringVar(&listLang, "lang", "", "Display language: en or hi (default: saved or configured)")
	statesCmd.Flags().BoolVarP(&statesAll, "all", "a", false, "Include states with no state-specific schemes")
}

// displayLang resolves --lang, then saved settings, then config.
func displayLang(b backend, cfg app.Config) string {
	if listLang != "" {
		return listLang
	}
	if st, err := b.Settings(); err == nil && st.Lang != "" {
		return st.Lang
	}
	return cfg.Lang
}

func runCategories(cmd *cobra.Command, args []string) error {
	return withBackend(true, func(b backend, cfg app.Config) error {
		cats, err := b.Categories(displayLang(b, cfg))
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cats)
		}
		fmt.Print(formatCategories(cats))
		return nil
	})
}

func runStates(cmd *cobra.Command, args []string) error {
	return withBackend(true, func(b backend, cfg app.Config) error {
		states, err := b.States(displayLang(b, cfg))
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(states)
		}
		fmt.Print(formatStates(states, !statesAll))
		return nil
	})
}
