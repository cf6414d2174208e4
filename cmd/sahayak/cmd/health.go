package cmd

import (
	"fmt"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := socket.NewClient(socket.SocketPath(cfg.Home))

	if !client.Ping() {
		fmt.Println("⚡ sahayak daemon is not running")
		return nil
	}

	health, err := client.Health()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(health)
	}
	fmt.Print(formatHealth(health))
	return nil
}
