// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dmazeio/document-import-poc/internal/ai"
	"github.com/Dmazeio/document-import-poc/internal/logging"
	"github.com/Dmazeio/document-import-poc/internal/pipeline"
	"github.com/Dmazeio/document-import-poc/internal/resolve"
	"github.com/Dmazeio/document-import-poc/internal/secrets"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run the import pipeline on one document",
	Long: `Process converts the document to markdown, classifies and optionally
splits it, extracts structured data per the template, resolves entity
mentions, and writes one result envelope per identified item into the
output directory.

Office and PDF formats require a container runtime (docker or podman) with
the markitdown image; markdown and plain text are read directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("template", "", "import template file (YAML or JSON, required)")
	processCmd.Flags().String("output", "", "output directory for result envelopes (default: output)")
	processCmd.Flags().String("entities-db", "", "SQLite entity directory supplementing the template's vocabularies")
	processCmd.Flags().String("model", "", "completion model identifier (default: gpt-4o)")
	_ = processCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(processCmd)
}

// pipelineConfig merges flags over the viper config file. Zero values are
// filled by the pipeline's defaults.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	var cfg types.PipelineConfig

	cfg.AI.Model = flagOrConfig(cmd, "model", "ai.model")
	cfg.AI.BaseURL = viper.GetString("ai.base_url")
	cfg.AI.MaxRetries = viper.GetInt("ai.max_retries")
	cfg.Schema.EnumThreshold = viper.GetInt("schema.enum_threshold")
	cfg.Schema.PersonEntityTypes = viper.GetStringSlice("schema.person_entity_types")
	cfg.Classifier.SampleSize = viper.GetInt("classifier.sample_size")
	cfg.Resolver.MinKeepConfidence = viper.GetString("resolver.min_keep_confidence")
	cfg.OutputDir = flagOrConfig(cmd, "output", "output_dir")

	return cfg
}

func flagOrConfig(cmd *cobra.Command, flag, key string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return viper.GetString(key)
}

func runProcess(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	templatePath, _ := cmd.Flags().GetString("template")

	level, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	log, err := logging.New(level, jsonLogs)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	cfg := pipelineConfig(cmd).WithDefaults()
	if cfg.AI.APIKey, err = secrets.OpenAIKey(secretsDir); err != nil {
		return err
	}

	p := pipeline.New(cfg, ai.NewOpenAI(cfg.AI), log)
	if dbPath, _ := cmd.Flags().GetString("entities-db"); dbPath != "" {
		dir, err := resolve.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer dir.Close()
		p.Directory = dir
	}

	envelopes := p.Run(context.Background(), inputPath, templatePath)

	paths, err := pipeline.WriteEnvelopes(cfg.OutputDir, inputPath, envelopes)
	if err != nil {
		return err
	}

	failed := 0
	for i, env := range envelopes {
		fmt.Fprintf(os.Stdout, "%s: %s\n", paths[i], env.Summary.OverallStatus)
		if env.Summary.OverallStatus == types.StatusFailure {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d item(s) failed; see the written envelopes for details", failed, len(envelopes))
	}
	return nil
}
