// Package main provides the command line client for the sales report server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salesreport/internal/client"
	"github.com/salesreport/internal/config"
	"github.com/salesreport/internal/shell"
)

var (
	serverURL  string
	logLevel   string
	configPath string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "reporter",
		Short:             "Upload sales data and request reports from the report server",
		SilenceUsage:      true,
		PersistentPreRunE: loadClientConfig,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "report server base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultClientConfigPath(), "client config file")

	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newEmailCmd())

	return rootCmd
}

// loadClientConfig fills unset flags from the config file and environment.
func loadClientConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cmd.Flags().Changed("server") {
		serverURL = cfg.ServerURL
	}
	if !cmd.Flags().Changed("log-level") {
		logLevel = cfg.LogLevel
	}
	return nil
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session: upload once, then report and email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			sh := shell.New(serverURL, cmd.InOrStdin(), cmd.OutOrStdout(), client.WithLogger(logger))
			return sh.Run(cmd.Context())
		},
	}
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a CSV file and print the stored path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			if err := upload(cmd.Context(), ctrl, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctrl.Session().UploadedFilePath())
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <path> <start> <end>",
		Short: "Upload a CSV file and print a report over the date range",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			if err := upload(cmd.Context(), ctrl, args[0]); err != nil {
				return err
			}
			return check("report", ctrl.GenerateReport(cmd.Context(), args[1], args[2]))
		},
	}
}

func newEmailCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "email <path>",
		Short: "Upload a CSV file and email its latest report",
		Long: "Upload a CSV file and email the latest report generated for it. With --start and --end\n" +
			"the report is generated first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			if err := upload(cmd.Context(), ctrl, args[0]); err != nil {
				return err
			}
			if start != "" || end != "" {
				if err := check("report", ctrl.GenerateReport(cmd.Context(), start, end)); err != nil {
					return err
				}
			}
			return check("email", ctrl.SendEmail(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "generate a report from this date first (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "generate a report up to this date first (YYYY-MM-DD)")
	return cmd
}

func newController(cmd *cobra.Command) (*client.Controller, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	console := shell.NewConsole(cmd.OutOrStdout())
	return client.New(serverURL, console, console, client.WithLogger(logger)), nil
}

func upload(ctx context.Context, ctrl *client.Controller, path string) error {
	return check("upload", ctrl.UploadFile(ctx, client.PathPicker{Path: path}))
}

// check turns a non-successful outcome into a command error. The user has
// already been notified, or the failure was logged.
func check(action string, outcome client.Outcome) error {
	if outcome != client.OutcomeSucceeded {
		return fmt.Errorf("%s: %s", action, outcome)
	}
	return nil
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(logLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}
