package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/javanhut/corelsp/internal/logging"
)

var (
	cfgFile     string
	logLevel    string
	logFile     string
	carrionPath string
)

// rootCmd is the base command; corelsp defaults to `serve` when invoked
// with no subcommand, matching editors that exec the binary directly as
// their LSP command line.
var rootCmd = &cobra.Command{
	Use:     "corelsp",
	Short:   "Carrion Language Server",
	Long:    "corelsp is the Carrion language's workspace-aware LSP server: incremental compilation, a symbol index, and the completion/hover/navigation/refactor surface an editor needs.",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command; called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "workspace manifest path (corelsp.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "log file path (default: stderr; stdout is reserved for the LSP stream)")
	rootCmd.PersistentFlags().StringVar(&carrionPath, "carrion-path", "", "path to a Carrion installation (for built-in module resolution)")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log"))
	_ = viper.BindPFlag("carrion_path", rootCmd.PersistentFlags().Lookup("carrion-path"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	viper.SetEnvPrefix("CORELSP")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to read config %s: %v\n", cfgFile, err)
		}
	}

	if viper.IsSet("log_level") {
		logLevel = viper.GetString("log_level")
	}
	if viper.IsSet("log_file") {
		logFile = viper.GetString("log_file")
	}
	if viper.IsSet("carrion_path") {
		carrionPath = viper.GetString("carrion_path")
	}

	logging.Init(logLevel, logFile)
}
