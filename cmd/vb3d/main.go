package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oxygene76/vb3d-sim/pkg/logging"
	"github.com/oxygene76/vb3d-sim/pkg/utils"
)

const (
	// Application constants
	appName = "vb3d"
	version = "v0.3.0"
)

var (
	// Configuration
	cfgFile  string
	logLevel string

	appConfig *utils.Config
	logger    = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Volleyball trajectory and legal spike envelope simulator",
	Long: `vb3d simulates a volleyball in 3D court coordinates. It samples the
ballistic flight of a launch or a set, and computes the envelope of straight
spike paths from the contact point that clear the net between the antennas
and land in the opponent's court.

Scenes are printed as JSON for any 3D front end, or served over HTTP and a
websocket for live editing.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "help" {
			appConfig = utils.DefaultConfig()
			return nil
		}

		config, err := utils.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			config.Log.Level = logLevel
		}

		l, err := logging.New(config.Log.Level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		appConfig = config
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// initCmd writes the default configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write the default configuration to --config, or to
$HOME/.vb3d/config.yaml. An existing file is kept unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := cfgFile
		if path == "" {
			path = filepath.Join(utils.HomeDir(), "config.yaml")
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}

		written, err := utils.SaveConfig(utils.DefaultConfig(), path)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at: %s\n", written)
		fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
		fmt.Fprintln(cmd.OutOrStdout(), "1. Adjust the scene defaults in the config file")
		fmt.Fprintf(cmd.OutOrStdout(), "2. Try a set: %s simulate set --format summary\n", appName)
		fmt.Fprintf(cmd.OutOrStdout(), "3. Start the API: %s serve\n", appName)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vb3d/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
