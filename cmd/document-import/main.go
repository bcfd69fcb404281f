// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the document-import CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dmazeio/document-import-poc/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir holds API key files; see internal/secrets.
const secretsDir = ".secrets/"

// rootCmd is the base command for the document-import CLI.
var rootCmd = &cobra.Command{
	Use:   "document-import",
	Short: "Import unstructured documents as linked Dmaze records",
	Long: `document-import turns an unstructured document (meeting minutes, risk
assessments, and similar) into flat, relationally linked Dmaze import
records. The pipeline classifies the document, splits it into items when
needed, extracts structured data under a template-derived schema, resolves
free-text mentions against controlled vocabularies, and flattens the
result.

Use 'process' to import a document and 'entities' to manage a local entity
directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; environment variables already set win.
		_ = godotenv.Load()

		s, err := secrets.Load(secretsDir)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./document-import.yaml or ~/.config/document-import/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "emit JSON logs instead of console output")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("document-import")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "document-import"))
		}
	}

	viper.SetEnvPrefix("DOCUMENT_IMPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
