package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/config"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/output"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Global flags
var (
	kibanaURL     string
	username      string
	passwordStdin bool
	insecureTLS   bool
	timeoutFlag   time.Duration
	outputFmt     string
	outputType    output.Format
	debug         bool
	configFile    string
	queryExpr     string
	queryFile     string
	errorFmt      string
	quietFlag     bool
)

// client is the shared API client
var client api.KibanaAPI

var rootCmd = &cobra.Command{
	Use:   "kbspaces",
	Short: "Export and import Kibana saved objects across spaces",
	Long: `kbspaces moves Kibana saved objects (dashboards, visualizations,
index patterns, ...) in and out of a Kibana instance, one space at a time.

Exports are written as raw NDJSON per space and optionally split into one
pretty-printed JSON file per saved object.

Environment Variables:
  KIBANA_URL       Kibana base URL, e.g. http://localhost:5601
  KIBANA_USERNAME  Username for basic auth
  KIBANA_PASSWORD  Password for basic auth (prompted when unset)`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true

		if err := config.LoadDotenv(); err != nil {
			return err
		}

		cfg, err := loadConfigFromFlag()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Output format selection: --output > config > default
		formatStr := outputFmt
		if !flagChanged(cmd, "output") && cfg != nil && strings.TrimSpace(cfg.OutputFormat) != "" {
			formatStr = strings.TrimSpace(cfg.OutputFormat)
		}
		if !flagChanged(cmd, "output") && !isTerminal(cmd.OutOrStdout()) {
			formatStr = "json"
		}
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputType = format
		outputFmt = string(format)

		// jq query
		if queryExpr != "" && queryFile != "" {
			return fmt.Errorf("use only one of --query or --query-file")
		}
		if queryFile != "" {
			loaded, err := readInputSource(queryFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			queryExpr = loaded
		}

		// Default quiet mode for non-interactive structured output
		if !flagChanged(cmd, "quiet") && !isTerminal(cmd.OutOrStdout()) && output.IsStructured(outputType) {
			quietFlag = true
		}

		ctx := cmd.Context()
		ctx = withIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = withLogger(ctx, newLogger(cmd.ErrOrStderr(), debug, quietFlag))
		ctx = output.WithFormat(ctx, outputType)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = output.WithQuiet(ctx, quietFlag)
		ctx = WithErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)

		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}
		if effectiveErrorFormat(ctx) != "text" {
			cmd.SilenceUsage = true
		}

		// Commands that never talk to Kibana skip client initialization.
		if !commandNeedsClient(cmd) {
			return nil
		}

		creds, err := resolveCredentials(cmd, cfg)
		if err != nil {
			return err
		}

		client = newClientFunc(creds.BaseURL, creds.Username, creds.Password, clientOptions(cfg)...)
		return nil
	},
}

// commandNeedsClient reports whether the command talks to the Kibana API.
// auth subcommands manage their own client for --verify.
func commandNeedsClient(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "split", "completion", "help", "login", "logout", "status":
		return false
	}
	if cmd.Parent() != nil && cmd.Parent().Name() == "auth" {
		return false
	}
	return true
}

// clientOptions builds API client options from flags and config
func clientOptions(cfg *config.Config) []api.ClientOption {
	var opts []api.ClientOption
	if insecureTLS || (cfg != nil && cfg.Insecure) {
		opts = append(opts, api.WithInsecureTLS())
	}
	if timeoutFlag > 0 {
		opts = append(opts, api.WithTimeout(timeoutFlag))
	}
	if debug {
		opts = append(opts, api.WithDebug(true))
	}
	return opts
}

func loadConfigFromFlag() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(name)
	}
	if flag == nil && cmd.Root() != nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	return flag != nil && flag.Changed
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printCommandError(rootCmd.Context(), err)
		return err
	}
	return nil
}

// GetClient returns the initialized API client
func GetClient() api.KibanaAPI {
	return client
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatText
	}
	return parsed
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("kbspaces version %s (commit: %s, built: %s)\n", version, commit, date))

	// Global flags
	rootCmd.PersistentFlags().StringVar(&kibanaURL, "url", "", "Kibana base URL (env: KIBANA_URL)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Username for basic auth (env: KIBANA_USERNAME)")
	rootCmd.PersistentFlags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin instead of prompting")
	rootCmd.PersistentFlags().BoolVarP(&insecureTLS, "insecure", "k", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "HTTP request timeout (default 30s)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format (text|json|ndjson|table|yaml)")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&queryFile, "query-file", "", "Read jq expression from file (use - for stdin)")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/kbspaces/config.yaml)")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
