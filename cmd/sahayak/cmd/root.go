package cmd

import (
	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagLogLevel string
	flagHome     string
	flagCSV      string
	flagJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "sahayak",
	Short: "sahayak: welfare scheme directory",
	Long: "Search Indian government welfare schemes, ask questions in English or Hindi,\n" +
		"and check which schemes a profile qualifies for.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "warn", "Diagnostic log level (debug, info, warn, error)")
	pf.StringVar(&flagHome, "home", "", "Data directory (overrides "+app.EnvHome+")")
	pf.StringVar(&flagCSV, "csv", "", "Corpus CSV (overrides "+app.EnvCSV+")")
	pf.BoolVar(&flagJSON, "json", false, "Print JSON instead of formatted text")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(eligibleCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(statesCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(wipeCmd)
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig() (app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, err
	}
	if flagHome != "" {
		cfg.Home = flagHome
	}
	if flagCSV != "" {
		cfg.CSVPath = flagCSV
	}
	return cfg, nil
}

// newLogger builds the CLI's diagnostic logger on stderr.
func newLogger() *zap.Logger {
	log, err := logging.New(flagLogLevel)
	if err != nil {
		return zap.NewNop()
	}
	return log
}
