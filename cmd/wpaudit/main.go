package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amosWeiskopf/wpaudit/internal/config"
	"github.com/amosWeiskopf/wpaudit/internal/logging"
	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/analyzer"
	"github.com/amosWeiskopf/wpaudit/pkg/client"
	"github.com/amosWeiskopf/wpaudit/pkg/notify"
	"github.com/amosWeiskopf/wpaudit/pkg/orchestrator"
	"github.com/amosWeiskopf/wpaudit/pkg/preflight"
	"github.com/amosWeiskopf/wpaudit/pkg/render"
	"github.com/amosWeiskopf/wpaudit/pkg/session"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app is built lazily by the root command's PersistentPreRunE
type app struct {
	logger     *zap.Logger
	session    *session.Session
	dispatcher *session.Dispatcher
}

var current app

var rootCmd = &cobra.Command{
	Use:   "wpaudit",
	Short: "wpaudit - WordPress site audit client",
	Long: `wpaudit drives a WordPress analysis backend: it inventories content and
runs SEO, performance, accessibility, security, broken link, theme/plugin
and user checks, then renders, exports and saves the results.`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current.logger != nil {
			_ = current.logger.Sync()
		}
	},
}

func setup(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if url, _ := cmd.Flags().GetString("backend"); url != "" {
		cfg.Backend.BaseURL = url
	}
	if cmd.Flags().Changed("lighthouse") {
		cfg.Analysis.Lighthouse, _ = cmd.Flags().GetBool("lighthouse")
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Export.OutputDir = dir
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = string(logging.LevelDebug)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewFactory().Create(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	backend, err := client.New(client.Options{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		UserAgent:         cfg.Backend.UserAgent,
	})
	if err != nil {
		return err
	}

	dom, err := render.NewDOM()
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	var robots orchestrator.RobotsChecker
	if cfg.Analysis.PreflightRobots {
		robots = preflight.New(nil, cfg.Backend.UserAgent)
	}

	s := session.New(session.Dependencies{
		Client: backend,
		Analyzer: analyzer.NewWithConfig(&analyzer.Config{
			SlowResponseMs:       cfg.Analysis.SlowResponseMs,
			TLSExpiryWarningDays: cfg.Analysis.TLSWarningDays,
		}),
		Text:      render.NewText(os.Stdout),
		DOM:       dom,
		Notifier:  notify.NewWriter(os.Stdout),
		Indicator: notify.NewSpinner(os.Stderr),
		Robots:    robots,
		Logger:    logger,
	}, session.Options{
		Lighthouse: cfg.Analysis.Lighthouse,
		CSVSource:  cfg.Export.CSVSource,
		OutputDir:  cfg.Export.OutputDir,
		Username:   cfg.Credentials.Username,
		Password:   cfg.Credentials.Password,
	})

	logger.Debug("configuration loaded",
		zap.String("backend", backend.BaseURL()),
		zap.Bool("lighthouse", cfg.Analysis.Lighthouse),
		zap.String("csv_source", cfg.Export.CSVSource))

	current = app{logger: logger, session: s, dispatcher: session.NewDispatcher(s)}
	return nil
}

// dispatch runs the given actions in order on the shared session
func dispatch(cmd *cobra.Command, steps ...[]string) error {
	for _, step := range steps {
		if len(step) == 0 {
			continue
		}
		if err := current.dispatcher.Dispatch(cmd.Context(), session.Action(step[0]), step[1:]...); err != nil {
			return err
		}
	}
	return nil
}

// quietly dispatches steps without printing widgets to the terminal
func quietly(cmd *cobra.Command, steps ...[]string) error {
	return current.session.Quietly(func() error { return dispatch(cmd, steps...) })
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [URL]",
	Short: "Run every analysis stage against a WordPress site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		steps := [][]string{{string(session.ActionAnalyze), args[0], username, password}}

		if format, _ := cmd.Flags().GetString("export"); format != "" {
			steps = append(steps, []string{string(session.ActionExport), format})
		}
		if save, _ := cmd.Flags().GetBool("save"); save {
			steps = append(steps, []string{string(session.ActionSave)})
		}
		if dashboard, _ := cmd.Flags().GetString("dashboard"); dashboard != "" {
			steps = append(steps, []string{string(session.ActionRender), dashboard})
		}
		if format, _ := cmd.Flags().GetString("report"); format != "" {
			steps = append(steps, []string{string(session.ActionReport), format})
		}
		return dispatch(cmd, steps...)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [REPORT.json] [csv|json|markdown]",
	Short: "Export the content groups of a report file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		return quietly(cmd,
			[]string{string(session.ActionLoad), args[0]},
			[]string{string(session.ActionExport), args[1], output},
		)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load [REPORT.json]",
	Short: "Load a report file and render the sections it contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dashboard, _ := cmd.Flags().GetString("dashboard")
		steps := [][]string{{string(session.ActionLoad), args[0]}}
		if dashboard != "" {
			steps = append(steps, []string{string(session.ActionRender), dashboard})
		}
		return dispatch(cmd, steps...)
	},
}

var saveCmd = &cobra.Command{
	Use:   "save [REPORT.json]",
	Short: "Store a report file on the backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		return quietly(cmd,
			[]string{string(session.ActionLoad), args[0]},
			[]string{string(session.ActionSave), target},
		)
	},
}

var seoCmd = &cobra.Command{
	Use:   "seo [REPORT.json]",
	Short: "Show the SEO entries of a report file, sorted and filtered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, _ := cmd.Flags().GetString("sort")
		minScore, _ := cmd.Flags().GetString("min-score")
		err := quietly(cmd,
			[]string{string(session.ActionLoad), args[0]},
			[]string{string(session.ActionFilterSEO), minScore},
			[]string{string(session.ActionSortSEO), order},
		)
		if err != nil {
			return err
		}
		if key, _ := cmd.Flags().GetString("detail"); key != "" {
			return dispatch(cmd, []string{string(session.ActionSEODetail), key})
		}
		return dispatch(cmd, []string{string(session.ActionPrint), string(models.FieldSEO)})
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage reports stored on the backend",
}

var reportsListCmd = &cobra.Command{
	Use:   "list [URL]",
	Short: "List stored reports of a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, []string{string(session.ActionListSaved), args[0]})
	},
}

var reportsOpenCmd = &cobra.Command{
	Use:   "open [URL] [FILENAME]",
	Short: "Download a stored report and render it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := [][]string{{string(session.ActionOpenSaved), args[1], args[0]}}
		if snapshot, _ := cmd.Flags().GetBool("snapshot"); snapshot {
			steps = append(steps, []string{string(session.ActionSnapshot)})
		}
		return dispatch(cmd, steps...)
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete [URL] [FILENAME]",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, []string{string(session.ActionDeleteSaved), args[1], args[0]})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [REPORT.json]",
	Short: "Generate a graded audit report from a report file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		return quietly(cmd,
			[]string{string(session.ActionLoad), args[0]},
			[]string{string(session.ActionReport), format, output},
		)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [REPORT.json] [DASHBOARD.html]",
	Short: "Render a report file as an HTML dashboard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return quietly(cmd,
			[]string{string(session.ActionLoad), args[0]},
			[]string{string(session.ActionRender), args[1]},
		)
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return console(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func console(ctx context.Context, in io.Reader, out io.Writer) error {
	d := current.dispatcher
	fmt.Fprintln(out, "wpaudit console. Type 'help' for actions, 'quit' to exit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			for _, a := range d.Actions() {
				fmt.Fprintf(out, "  %s\n", d.Usage(a))
			}
			continue
		}
		if err := d.Execute(ctx, line); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func init() {
	analyzeCmd.Flags().String("username", "", "Basic auth username for the site")
	analyzeCmd.Flags().String("password", "", "Basic auth password for the site")
	analyzeCmd.Flags().String("export", "", "Export content groups after the run (csv, json, markdown)")
	analyzeCmd.Flags().Bool("save", false, "Store the report on the backend after the run")
	analyzeCmd.Flags().String("dashboard", "", "Write the HTML dashboard to this file")
	analyzeCmd.Flags().String("report", "", "Generate a graded report (json, html, markdown)")

	exportCmd.Flags().String("output", "", "Output file")

	loadCmd.Flags().String("dashboard", "", "Write the HTML dashboard to this file")

	saveCmd.Flags().String("target", "", "Site URL to store the report under (defaults to the report target)")

	seoCmd.Flags().String("sort", "", "Sort by score (asc, desc)")
	seoCmd.Flags().String("min-score", "0", "Hide entries scoring below this value")
	seoCmd.Flags().String("detail", "", "Show the entry with this key")

	reportsOpenCmd.Flags().Bool("snapshot", false, "Also write the report to the output directory")

	reportCmd.Flags().String("format", "markdown", "Report format (json, html, markdown)")
	reportCmd.Flags().String("output", "", "Output file for report")

	reportsCmd.AddCommand(reportsListCmd, reportsOpenCmd, reportsDeleteCmd)
	rootCmd.AddCommand(analyzeCmd, exportCmd, loadCmd, saveCmd, seoCmd, reportsCmd, reportCmd, renderCmd, consoleCmd)

	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().String("backend", "", "Analysis backend URL (overrides backend.base_url)")
	rootCmd.PersistentFlags().Bool("lighthouse", true, "Run the Lighthouse stage")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory for exports and reports")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
