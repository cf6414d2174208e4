package cmd

import (
	"fmt"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load [csv]",
	Short: "Load the scheme corpus from a CSV export",
	Long: "Parses the CSV, replaces the cached corpus and serves it. Without an\n" +
		"argument the configured CSV is re-read. While the daemon runs, load asks it\n" +
		"to reload its configured CSV.",
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := socket.NewClient(socket.SocketPath(cfg.Home))
	if client.Ping() {
		if len(args) == 1 {
			return fmt.Errorf("the daemon serves its configured CSV\n"+
				"  → restart it with:  sahayak daemon stop && sahayak daemon start --csv %s", args[0])
		}
		res, err := client.Reload()
		if err != nil {
			return err
		}
		return printLoad(res, true)
	}

	path := cfg.CSVPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no CSV given; pass a path or set SAHAYAK_CSV")
	}

	a, err := openApp(cfg, newLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.LoadFile(path)
	if err != nil {
		return err
	}
	return printLoad(&res, false)
}

func printLoad(res *socket.ReloadResult, daemon bool) error {
	if flagJSON {
		return printJSON(res)
	}
	where := ""
	if daemon {
		where = " (daemon)"
	}
	fmt.Printf("⚡ loaded %s%d schemes%s from %s in %dms%s\n",
		colorBold, res.Schemes, colorReset, res.Source, res.ElapsedMs, where)
	return nil
}
