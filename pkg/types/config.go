package types

import "time"

// AIConfig holds shared settings for stages that call the completion service.
type AIConfig struct {
	// Model is the completion model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the completion API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the completion API endpoint (default OpenAI).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed or
	// non-conformant completions (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ConversionBackend identifies the document conversion tool.
type ConversionBackend string

const (
	BackendMarkitdown ConversionBackend = "markitdown"
	BackendPlaintext  ConversionBackend = "plaintext"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the conversion tool. Empty means choose by file
	// extension: plaintext for .md/.txt, markitdown otherwise.
	Backend ConversionBackend `json:"backend,omitempty" yaml:"backend,omitempty"`
}

// SchemaConfig holds settings for template compilation.
type SchemaConfig struct {
	// EnumThreshold is the largest vocabulary rendered as an enum in the
	// validation schema (default 25). Larger vocabularies stay free text
	// and rely on the resolver.
	EnumThreshold int `json:"enum_threshold" yaml:"enum_threshold"`

	// PersonEntityTypes lists entity types that are always left as free
	// text regardless of vocabulary size (default ["user", "people"]).
	PersonEntityTypes []string `json:"person_entity_types" yaml:"person_entity_types"`
}

// ClassifierConfig holds settings for document classification.
type ClassifierConfig struct {
	// SampleSize is the number of characters taken from each end of long
	// documents for the classification sample (default 4000).
	SampleSize int `json:"sample_size" yaml:"sample_size"`
}

// ResolverConfig holds settings for entity resolution.
type ResolverConfig struct {
	// MinKeepConfidence is the lowest confidence level the flattener
	// accepts. Matches below it are dropped with a warning; matches at or
	// above it but below High are kept with a warning. Default Low, which
	// keeps every match the resolver returns.
	MinKeepConfidence string `json:"min_keep_confidence" yaml:"min_keep_confidence"`
}

// PipelineConfig groups all stage configurations for one import run.
type PipelineConfig struct {
	AI         AIConfig         `json:"ai" yaml:"ai"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Schema     SchemaConfig     `json:"schema" yaml:"schema"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Resolver   ResolverConfig   `json:"resolver" yaml:"resolver"`

	// OutputDir is where result envelopes are written (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// WithDefaults returns a copy of cfg with zero values replaced by defaults.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o"
	}
	if c.AI.MaxRetries <= 0 {
		c.AI.MaxRetries = 2
	}
	if c.Schema.EnumThreshold <= 0 {
		c.Schema.EnumThreshold = 25
	}
	if len(c.Schema.PersonEntityTypes) == 0 {
		c.Schema.PersonEntityTypes = []string{"user", "people"}
	}
	if c.Classifier.SampleSize <= 0 {
		c.Classifier.SampleSize = 4000
	}
	if c.Resolver.MinKeepConfidence == "" {
		c.Resolver.MinKeepConfidence = ConfidenceLow
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	return c
}
