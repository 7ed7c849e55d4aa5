// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-radar CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/config"
	"github.com/pdiddy/research-radar/internal/logging"
	"github.com/pdiddy/research-radar/internal/secrets"
	"github.com/pdiddy/research-radar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is decoded from viper before any subcommand runs.
	cfg types.Config

	// logger writes diagnostics to stderr.
	logger = zap.NewNop()

	// creds holds credentials from the environment, .env, and .secrets/.
	creds secrets.Credentials
)

// rootCmd is the base command for the research-radar CLI.
var rootCmd = &cobra.Command{
	Use:   "research-radar",
	Short: "Fetch, merge, and annotate research paper and patent metadata",
	Long: `research-radar is a batch toolkit for tracking a research area. It fetches
paper metadata from arXiv (or patents from PatentsView) into flat tables,
combines tables, and annotates each paper with a problem/solution pair
derived from its abstract by an external text-generation model.

Stages communicate only through table files: fetch, combine, annotate.
Use list to filter and read the results.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}

		creds, err = secrets.Collect(viper.GetString(config.KeySecretsDir), viper.GetString(config.KeyEnvFile), logger)
		if err != nil {
			return err
		}
		if cfg.Annotate.Generator.Token == "" {
			cfg.Annotate.Generator.Token = creds.HuggingFaceToken
		}
		cfg.Fetch.APIKey = creds.PatentsViewKey
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-radar.yaml or ~/.config/research-radar/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file with credentials")
	rootCmd.PersistentFlags().String("ledger-path", "data/ledger.db", "annotation ledger database")

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"log.level":          "log-level",
		"log.format":         "log-format",
		config.KeySecretsDir: "secrets-dir",
		config.KeyEnvFile:    "env-file",
		"ledger.path":        "ledger-path",
	})

	config.SetDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-radar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-radar"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "warning: reading config file %s: %v\n", cfgFile, err)
	}
}

// bindFlags binds each viper key to the named flag so that an explicitly
// set flag overrides the config file and environment.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
