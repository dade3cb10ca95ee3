package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bz888/cafeteira/internal/api"
	"github.com/bz888/cafeteira/internal/api/server"
	"github.com/bz888/cafeteira/internal/config"
	"github.com/bz888/cafeteira/internal/logger"
	"github.com/bz888/cafeteira/internal/ui"
	"github.com/bz888/cafeteira/internal/widget"
	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

func NewRootCmd() *cobra.Command {
	cfg, loadErr := config.Load()
	if cfg == nil {
		cfg = &config.Config{Timeout: widget.DefaultTimeout}
	}

	chat := newChatCmd(cfg)
	root := &cobra.Command{
		Use:          "cafeteira",
		Short:        "Chat with your coffee machine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadErr
		},
		RunE: chat.RunE,
	}
	root.PersistentFlags().BoolVar(&cfg.Dev, "dev", cfg.Dev, "Development mode")
	root.PersistentFlags().StringVar(&cfg.LogPath, "logPath", cfg.LogPath, "Path to save the log file")
	addChatFlags(root, cfg)

	root.AddCommand(chat)
	root.AddCommand(newServeCmd(cfg))
	root.AddCommand(newVersionCmd())
	return root
}

func addChatFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Base URL of the chat server")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Timeout for each request")
}

func newChatCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat widget in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			screen := ui.New(cfg.Dev)
			if err := logger.InitLogger(cfg.Dev, cfg.LogPath, screen.DebugConsole()); err != nil {
				return err
			}
			localLogger := logger.NewLogger("main")
			defer localLogger.Close()

			backend, err := api.NewClient(api.ClientConfig{BaseURL: cfg.ServerURL})
			if err != nil {
				return err
			}
			w := widget.New(backend, screen, widget.Options{Timeout: cfg.Timeout})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			localLogger.Info("Chat started against ", backend.GetChatURL())
			return screen.Run(ctx, w)
		},
	}
	addChatFlags(cmd, cfg)
	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat server that relays messages and drives the coffee machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Server.Validate(); err != nil {
				return err
			}
			if err := logger.InitLogger(cfg.Dev, cfg.LogPath, nil); err != nil {
				return err
			}
			localLogger := logger.NewLogger("main")
			defer localLogger.Close()

			s, err := server.New(cfg.Server)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "Listen address")
	cmd.Flags().StringVar(&cfg.Server.MQTTBroker, "broker", cfg.Server.MQTTBroker, "MQTT broker URL, e.g. tcp://localhost:1883")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cafeteira %s\n", Version)
		},
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

