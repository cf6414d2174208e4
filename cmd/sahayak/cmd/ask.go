package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/app"
	"github.com/spf13/cobra"
)

var (
	askState    string
	askEligible bool
	askLang     string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question in English or Hindi",
	Long: "Answers with a single scheme, a category listing or search results.\n" +
		"The saved state, profile and eligibility mode apply unless overridden.\n\n" +
		"  sahayak ask \"pm kisan documents\"\n" +
		"  sahayak ask \"schemes for women\" --state kerala\n" +
		"  sahayak ask \"किसान योजना\" --lang hi",
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askState, "state", "", "State key (default: saved state)")
	askCmd.Flags().BoolVarP(&askEligible, "eligible", "e", false, "Only schemes the saved profile qualifies for")
	askCmd.Flags().StringVar(&askLang, "lang", "", "Reply language: en or hi")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askLang != "" && askLang != "en" && askLang != "hi" {
		return fmt.Errorf("unsupported language %q (use en or hi)", askLang)
	}
	query := strings.Join(args, " ")
	return withBackend(true, func(b backend, _ app.Config) error {
		result, err := b.Ask(socket.AskParams{
			Query:        query,
			State:        askState,
			EligibleOnly: askEligible,
			UseSaved:     true,
			Lang:         askLang,
		})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(result)
		}
		fmt.Print(formatReply(result))
		return nil
	})
}
