package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/app"
	"github.com/corey/sahayak/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var daemonHTTPAddr string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the sahayak daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the foreground",
	Long: "Serves the corpus over a unix socket for the CLI and over HTTP for the\n" +
		"browser UI, and reloads the CSV when it changes. Stops on SIGINT/SIGTERM\n" +
		"or `sahayak daemon stop`.",
	Args: cobra.NoArgs,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	daemonStartCmd.Flags().StringVar(&daemonHTTPAddr, "http", "", "HTTP listen address (overrides "+app.EnvHTTPAddr+")")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if daemonHTTPAddr != "" {
		cfg.HTTPAddr = daemonHTTPAddr
	}

	sockPath := socket.SocketPath(cfg.Home)
	if socket.NewClient(sockPath).Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = flagLogLevel
	}
	paths := app.NewPaths(cfg.Home)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", paths.Root, err)
	}
	log, err := logging.New(level, "stderr", paths.DaemonLog)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Load(); err != nil {
		return explainNoCorpus(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("⚡ sahayak daemon started at %s (http://%s)\n", sockPath, cfg.HTTPAddr)
	if err := a.Run(ctx); err != nil {
		log.Error("daemon stopped", zap.Error(err))
		return err
	}
	fmt.Println("\n⚡ shut down")
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := socket.NewClient(socket.SocketPath(cfg.Home))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}
