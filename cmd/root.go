package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sf-data-move/internal/application"
	"sf-data-move/internal/display"
)

var cfgFile string

// CLI flag variables
var (
	// Source org flags
	sourceAlias      string
	sourceURL        string
	sourceUsername   string
	sourceAPIVersion string

	// Target org flags
	targetAlias      string
	targetURL        string
	targetUsername   string
	targetAPIVersion string

	// Operation flags
	verbose   bool
	quiet     bool
	timeout   time.Duration
	logFile   string
	logFormat string

	// Display flags
	noColor       bool
	theme         string
	noInteractive bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sf-data-move",
	Short: "Plan rollbacks for Salesforce org-to-org data migrations",
	Long: `sf-data-move plans the rollback of bulk data migrations between
Salesforce orgs. It reads the backup directory a migration run left
behind, inverts each object's operation, synthesizes the queries needed
to identify affected rows, and writes an engine job file that undoes
the run.

Planning never touches either org. The generated plan is reviewed by an
operator and handed to the data-move engine for execution.

Examples:
  # Plan a rollback from a local backup directory
  sf-data-move rollback plan ./backups/run-20260815 \
      --source-org prod --target-org staging

  # Plan against an archive stored in S3 (storage settings from config file)
  sf-data-move rollback plan --archive run-20260815 --config .sf-data-move.yaml

  # Inspect a previously written plan
  sf-data-move rollback show ./backups/run-20260815/rollback-config.json

  # Validate a backup manifest without planning
  sf-data-move manifest validate ./backups/run-20260815`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Configuration file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sf-data-move.yaml)")

	// Source org flags
	rootCmd.PersistentFlags().StringVar(&sourceAlias, "source-org", "", "source org alias")
	rootCmd.PersistentFlags().StringVar(&sourceURL, "source-url", "", "source org instance URL")
	rootCmd.PersistentFlags().StringVar(&sourceUsername, "source-username", "", "source org username")
	rootCmd.PersistentFlags().StringVar(&sourceAPIVersion, "source-api-version", "", "source org API version")

	// Target org flags
	rootCmd.PersistentFlags().StringVar(&targetAlias, "target-org", "", "target org alias")
	rootCmd.PersistentFlags().StringVar(&targetURL, "target-url", "", "target org instance URL")
	rootCmd.PersistentFlags().StringVar(&targetUsername, "target-username", "", "target org username")
	rootCmd.PersistentFlags().StringVar(&targetAPIVersion, "target-api-version", "", "target org API version")

	// Operation flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "operation timeout")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Display flags
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "dark", "color theme (dark, light, plain)")
	rootCmd.PersistentFlags().BoolVar(&noInteractive, "no-interactive", false, "disable interactive prompts")

	// Bind flags to viper
	viper.BindPFlag("orgs.source.alias", rootCmd.PersistentFlags().Lookup("source-org"))
	viper.BindPFlag("orgs.source.instance_url", rootCmd.PersistentFlags().Lookup("source-url"))
	viper.BindPFlag("orgs.source.username", rootCmd.PersistentFlags().Lookup("source-username"))
	viper.BindPFlag("orgs.source.api_version", rootCmd.PersistentFlags().Lookup("source-api-version"))

	viper.BindPFlag("orgs.target.alias", rootCmd.PersistentFlags().Lookup("target-org"))
	viper.BindPFlag("orgs.target.instance_url", rootCmd.PersistentFlags().Lookup("target-url"))
	viper.BindPFlag("orgs.target.username", rootCmd.PersistentFlags().Lookup("target-username"))
	viper.BindPFlag("orgs.target.api_version", rootCmd.PersistentFlags().Lookup("target-api-version"))

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.BindPFlag("display.theme", rootCmd.PersistentFlags().Lookup("theme"))
}

// validateFlags validates CLI flags and their combinations
func validateFlags() error {
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet flags are mutually exclusive")
	}

	if timeout <= 0 {
		return fmt.Errorf("timeout must be greater than 0")
	}

	return nil
}

// buildConfig builds the application configuration from CLI flags and config file
func buildConfig(cmd *cobra.Command) (*application.Config, error) {
	if err := validateFlags(); err != nil {
		return nil, err
	}

	config := &application.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Explicit flag overrides; viper binding covers defaults
	if sourceAlias != "" {
		config.Orgs.Source.Alias = sourceAlias
	}
	if sourceURL != "" {
		config.Orgs.Source.InstanceURL = sourceURL
	}
	if sourceUsername != "" {
		config.Orgs.Source.Username = sourceUsername
	}
	if sourceAPIVersion != "" {
		config.Orgs.Source.APIVersion = sourceAPIVersion
	}

	if targetAlias != "" {
		config.Orgs.Target.Alias = targetAlias
	}
	if targetURL != "" {
		config.Orgs.Target.InstanceURL = targetURL
	}
	if targetUsername != "" {
		config.Orgs.Target.Username = targetUsername
	}
	if targetAPIVersion != "" {
		config.Orgs.Target.APIVersion = targetAPIVersion
	}

	if cmd.Flags().Changed("verbose") {
		config.Verbose = verbose
	}
	if cmd.Flags().Changed("quiet") {
		config.Quiet = quiet
	}
	if cmd.Flags().Changed("timeout") {
		config.Timeout = timeout
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	if logFormat != "" {
		config.LogFormat = logFormat
	}

	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}

	if config.Display == nil {
		config.Display = display.DefaultConfig()
	}
	if cmd.Flags().Changed("theme") || config.Display.Theme == "" {
		config.Display.Theme = theme
	}
	if cmd.Flags().Changed("no-color") {
		config.Display.ColorEnabled = !noColor
	} else if !viper.IsSet("display.color_enabled") {
		config.Display.ColorEnabled = true
	}
	if cmd.Flags().Changed("no-interactive") {
		config.Display.InteractiveMode = !noInteractive
	} else if !viper.IsSet("display.interactive") {
		config.Display.InteractiveMode = true
	}

	if err := config.Display.Validate(); err != nil {
		return nil, fmt.Errorf("display configuration validation failed: %w", err)
	}

	return config, nil
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sf-data-move" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sf-data-move")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("SF_DATA_MOVE")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// Version information (set by main package)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
	goVersion = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, bt, gc, gv string) {
	version = v
	buildTime = bt
	gitCommit = gc
	goVersion = gv
}

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Long:  "Print the version information for sf-data-move",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sf-data-move version %s\n", version)
			fmt.Printf("Built: %s\n", buildTime)
			fmt.Printf("Commit: %s\n", gitCommit)
			fmt.Printf("Go version: %s\n", goVersion)
		},
	}
}

// createConfigCommand creates the config subcommand for generating sample config
func createConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Generate a sample configuration file",
		Long: `Generate a sample configuration file that can be used with the --config flag.

Examples:
  # Generate config file
  sf-data-move config > .sf-data-move.yaml`,
		Run: func(cmd *cobra.Command, args []string) {
			sampleConfig := `# sf-data-move configuration file

# Orgs of the original migration run. The rollback plan exchanges
# these roles automatically.
orgs:
  source:
    alias: prod             # org alias known to the engine CLI
    instance_url: ""        # optional, must be https
    username: ""            # used when no alias is set
    api_version: "60.0"
  target:
    alias: staging
    instance_url: ""
    username: ""
    api_version: "60.0"

# Planning settings
backup_dir: ""              # local backup directory to plan against
archive: ""                 # remote archive name (fetched via storage settings)
output_dir: ""              # where rollback-config.json is written (default: backup dir)
staging_dir: ""             # local staging area for fetched archives (default: temp dir)
upsert_fallback: delete     # ambiguous upsert handling: delete or skip
passphrase: ""              # passphrase for encrypted backups (prefer the env var)
force: false                # accept low-confidence plans without confirmation

# Remote backup storage (used when archive is set)
storage:
  provider: local           # local, s3, azure, gcs
  local:
    base_path: ./backups
  s3:
    region: us-east-1
    bucket: ""
    prefix: backups/
    access_key: ""
    secret_key: ""
  azure:
    account_name: ""
    account_key: ""
    container_name: ""
  gcs:
    project_id: ""
    bucket: ""
    credentials_path: ""

# Output settings
verbose: false
quiet: false
timeout: 5m
log_file: ""
log_format: text            # text or json
display:
  color_enabled: true
  theme: dark               # dark, light, plain
  interactive: true

# Environment variables use the SF_DATA_MOVE_ prefix, for example:
#   SF_DATA_MOVE_PASSPHRASE=...
#   SF_DATA_MOVE_STORAGE_S3_BUCKET=my-backups
`
			fmt.Print(sampleConfig)
		},
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(createVersionCommand())
	rootCmd.AddCommand(createConfigCommand())
}
