package cmd

import (
	"fmt"

	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/ports"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Select the state used to filter results",
}

var stateSetCmd = &cobra.Command{
	Use:   "set <state>",
	Short: "Show central schemes plus this state's schemes",
	Args:  cobra.ExactArgs(1),
	RunE:  runStateSet,
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Show schemes for all of India",
	Args:  cobra.NoArgs,
	RunE:  runStateClear,
}

var modeCmd = &cobra.Command{
	Use:   "mode <on|off>",
	Short: "Turn eligibility mode on or off",
	Long: "With eligibility mode on, ask narrows every reply to schemes the saved\n" +
		"profile qualifies for.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runMode,
}

func init() {
	stateCmd.AddCommand(stateSetCmd)
	stateCmd.AddCommand(stateClearCmd)
}

// updateSettings applies fn to the saved settings and stores the result.
func updateSettings(fn func(st *ports.Settings)) (*ports.Settings, error) {
	var out *ports.Settings
	err := withBackend(false, func(b backend, _ app.Config) error {
		st, err := b.Settings()
		if err != nil {
			return err
		}
		fn(st)
		if err := b.SaveSettings(st); err != nil {
			return err
		}
		out = st
		return nil
	})
	return out, err
}

func runStateSet(cmd *cobra.Command, args []string) error {
	if _, err := updateSettings(func(st *ports.Settings) { st.State = args[0] }); err != nil {
		return err
	}
	fmt.Printf("⚡ state set to %s%s%s\n", colorCyan, args[0], colorReset)
	return nil
}

func runStateClear(cmd *cobra.Command, args []string) error {
	if _, err := updateSettings(func(st *ports.Settings) { st.State = "" }); err != nil {
		return err
	}
	fmt.Println("⚡ state cleared; showing all of India")
	return nil
}

func runMode(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("mode must be on or off, got %q", args[0])
	}

	if _, err := updateSettings(func(st *ports.Settings) { st.EligibleOnly = on }); err != nil {
		return err
	}
	if on {
		fmt.Printf("⚡ eligibility mode %son%s\n", colorGreen, colorReset)
	} else {
		fmt.Println("⚡ eligibility mode off")
	}
	return nil
}
