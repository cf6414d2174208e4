package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete the cached corpus, profile and settings",
	Long:  "Deletes all persisted sahayak data. Works with or without daemon.",
	Args:  cobra.NoArgs,
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "Skip confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !wipeForce {
		fmt.Printf("⚠ This will delete all sahayak data in %s. Continue? [y/N] ", cfg.Home)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("cancelled")
			return nil
		}
	}

	client := socket.NewClient(socket.SocketPath(cfg.Home))

	// If daemon is running, wipe via socket
	if client.Ping() {
		if err := client.Wipe(); err != nil {
			return err
		}
		fmt.Println("⚡ data wiped (daemon)")
		return nil
	}

	// Daemon not running: wipe bbolt directly
	a, err := openApp(cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Wipe(); err != nil {
		return err
	}
	fmt.Println("⚡ data wiped")
	return nil
}
