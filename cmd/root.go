package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Prakkie91/jobo-go/config"
	"github.com/Prakkie91/jobo-go/filter"
	"github.com/Prakkie91/jobo-go/jobo"
	"github.com/Prakkie91/jobo-go/output"
)

// app is the state shared by all commands of one invocation
type app struct {
	cfgFile string

	// Global flag overrides
	outputFormat string
	apiKey       string
	baseURL      string
	timeout      time.Duration
	verbose      bool

	cfg     *config.Config
	logger  zerolog.Logger
	printer *output.Printer
	filters *filter.Manager
	client  *jobo.Client
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "jobo",
		Short: "Query the Jobo jobs API from the command line",
		Long: `jobo is a CLI for the Jobo jobs API. It streams the job feed, tracks
expired listings, searches jobs, geocodes locations and drives auto-apply
sessions.

The API key is read from api.key in the config file, the JOBO_API_KEY
environment variable (a .env file in the working directory is honoured)
or the --api-key flag.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml, ~/.jobo/config.yaml or /etc/jobo/config.yaml)")
	flags.StringVarP(&a.outputFormat, "output", "o", "", "output format: table, json or csv")
	flags.StringVar(&a.apiKey, "api-key", "", "Jobo API key")
	flags.StringVar(&a.baseURL, "base-url", "", "Jobo API base URL")
	flags.DurationVar(&a.timeout, "timeout", 0, "per-request timeout (e.g. 30s)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newFeedCmd(a),
		newExpiredCmd(a),
		newSearchCmd(a),
		newGeocodeCmd(a),
		newApplyCmd(a),
		newVersionCmd(a),
		newUpdateCmd(a),
	)

	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		stop()
		os.Exit(1)
	}
}

// initialize loads configuration and prepares the logger, printer and filter presets
func (a *app) initialize(cmd *cobra.Command, args []string) error {
	var err error
	a.cfg, err = config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Command line flags win over file and environment
	if cmd.Flags().Changed("api-key") {
		a.cfg.API.Key = a.apiKey
	}
	if cmd.Flags().Changed("base-url") {
		a.cfg.API.BaseURL = a.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		a.cfg.API.Timeout = a.timeout
	}
	if cmd.Flags().Changed("output") {
		a.cfg.Output.Format = a.outputFormat
	}
	if a.verbose {
		a.cfg.Logging.Level = "debug"
	}

	a.logger = setupLogger(a.cfg.Logging, cmd.ErrOrStderr())

	format, err := output.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	color := a.cfg.Logging.Color && isTerminal(out) && os.Getenv("NO_COLOR") == ""
	a.printer = output.New(out, format, output.Options{
		Color:      color,
		Hyperlinks: color && a.cfg.Output.Hyperlinks,
	})

	a.filters = filter.NewManager()
	if err := a.filters.RegisterFilters(a.cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	a.logger.Debug().
		Str("base_url", a.cfg.API.BaseURL).
		Dur("timeout", a.cfg.API.Timeout).
		Str("output", string(format)).
		Int("presets", len(a.cfg.Filter.Presets)).
		Msg("Configuration loaded")

	return nil
}

// apiClient returns the Jobo client, creating it on first use
func (a *app) apiClient() (*jobo.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	client, err := jobo.NewClient(a.cfg.API.Key,
		jobo.WithBaseURL(a.cfg.API.BaseURL),
		jobo.WithTimeout(a.cfg.API.Timeout),
		jobo.WithUserAgent("jobo-cli/"+version),
		jobo.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jobo client: %w", err)
	}

	a.client = client
	return client, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(w),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
