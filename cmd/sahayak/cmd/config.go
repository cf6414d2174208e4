package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/app"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the data directory, corpus source, socket path and daemon status. No daemon required.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths := app.NewPaths(cfg.Home)
	sockPath := socket.SocketPath(cfg.Home)

	client := socket.NewClient(sockPath)
	daemonRunning := client.Ping()

	if flagJSON {
		return printJSON(map[string]any{
			"home":          cfg.Home,
			"csv":           cfg.CSVPath,
			"db":            paths.DB,
			"socket":        sockPath,
			"http_addr":     cfg.HTTPAddr,
			"cache_ttl":     cfg.CacheTTL.String(),
			"default_state": cfg.DefaultState,
			"search_limit":  cfg.SearchLimit,
			"lang":          cfg.Lang,
			"daemon":        daemonRunning,
		})
	}

	daemonStatus := fmt.Sprintf("%s✗ not running%s", colorYellow, colorReset)
	if daemonRunning {
		daemonStatus = fmt.Sprintf("%s✓ running%s", colorGreen, colorReset)
	}
	csv := cfg.CSVPath
	if csv == "" {
		csv = colorGray + "(not set: " + app.EnvCSV + ")" + colorReset
	}
	state := cfg.DefaultState
	if state == "" {
		state = "all India"
	}

	fmt.Printf("%s⚡ sahayak config%s\n", colorBold, colorReset)
	fmt.Printf("  Home:       %s\n", cfg.Home)
	fmt.Printf("  CSV:        %s\n", csv)
	fmt.Printf("  DB:         %s\n", paths.DB)
	fmt.Printf("  Cache TTL:  %s\n", cfg.CacheTTL)
	fmt.Printf("  State:      %s\n", state)
	fmt.Printf("  Limit:      %d\n", cfg.SearchLimit)
	fmt.Printf("  Language:   %s\n", cfg.Lang)
	fmt.Printf("  Socket:     %s\n", sockPath)
	fmt.Printf("  Daemon:     %s\n", daemonStatus)

	if daemonRunning {
		if addr, err := os.ReadFile(paths.AddrFile); err == nil {
			fmt.Printf("  Web:        http://%s\n", strings.TrimSpace(string(addr)))
		}
	}
	return nil
}
