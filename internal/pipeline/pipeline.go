// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one document import run: template
// compilation, conversion, classification, optional splitting, then
// per-chunk extraction, resolution, and flattening. Every run yields at
// least one result envelope, even when setup fails outright.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Dmazeio/document-import-poc/internal/ai"
	"github.com/Dmazeio/document-import-poc/internal/classify"
	"github.com/Dmazeio/document-import-poc/internal/convert"
	"github.com/Dmazeio/document-import-poc/internal/extract"
	"github.com/Dmazeio/document-import-poc/internal/flatten"
	"github.com/Dmazeio/document-import-poc/internal/resolve"
	"github.com/Dmazeio/document-import-poc/internal/schema"
	"github.com/Dmazeio/document-import-poc/internal/template"
	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// Processing log step names. They are keys in the envelope's
// processingLog and part of the output contract.
const (
	stepTemplate       = "Template Processing"
	stepConversion     = "Document Conversion"
	stepClassification = "Document Classification"
	stepSplitting      = "Document Splitting"
	stepExtraction     = "Data Extraction"
	stepResolution     = "Entity Resolution"
	stepTransformation = "Data Transformation"
)

// Pipeline runs document imports. Converter and Directory are optional:
// a nil Converter picks a backend per input file, a nil Directory limits
// vocabularies to the template's own entity lists.
type Pipeline struct {
	Config    types.PipelineConfig
	Log       *zap.Logger
	Client    ai.Client
	Converter convert.Converter
	Directory resolve.Directory
}

// New builds a Pipeline with the common collaborators. Optional fields
// can be set on the returned value.
func New(cfg types.PipelineConfig, client ai.Client, log *zap.Logger) *Pipeline {
	return &Pipeline{Config: cfg, Client: client, Log: log}
}

// runState carries the accumulating log, error, and warning lists. Each
// chunk works on its own clone seeded from the shared pre-chunk state, so
// one chunk's outcome never leaks into a sibling's envelope.
type runState struct {
	log      map[string]string
	errors   []string
	warnings []string
}

func newRunState() *runState {
	return &runState{log: map[string]string{}, errors: []string{}, warnings: []string{}}
}

func (s *runState) clone() *runState {
	c := &runState{
		log:      make(map[string]string, len(s.log)),
		errors:   append([]string{}, s.errors...),
		warnings: append([]string{}, s.warnings...),
	}
	for k, v := range s.log {
		c.log[k] = v
	}
	return c
}

// step times fn and records its outcome in the processing log. Failures
// are also appended to the error list; the caller decides whether they
// abort the run, the chunk, or nothing.
func (p *Pipeline) step(st *runState, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start).Seconds()
	if err != nil {
		st.log[name] = fmt.Sprintf("Failed (%.2fs)", elapsed)
		st.errors = append(st.errors, fmt.Sprintf("%s: %v", name, err))
		p.logger().Error("step failed", zap.String("step", name), zap.Float64("seconds", elapsed), zap.Error(err))
		return err
	}
	st.log[name] = fmt.Sprintf("Success (%.2fs)", elapsed)
	p.logger().Info("step completed", zap.String("step", name), zap.Float64("seconds", elapsed))
	return nil
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}

// Run imports one document. The returned slice always has at least one
// envelope: one per chunk on success, a single Failure envelope when
// shared setup fails.
func (p *Pipeline) Run(ctx context.Context, inputPath, templatePath string) []types.Envelope {
	cfg := p.Config.WithDefaults()
	shared := newRunState()

	base := types.Summary{
		InputFile:           filepath.Base(inputPath),
		TemplateUsed:        filepath.Base(templatePath),
		ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var tpl *types.Template
	var compiled *schema.Compiled
	if err := p.step(shared, stepTemplate, func() error {
		var err error
		if tpl, err = template.Load(templatePath); err != nil {
			return err
		}
		compiled, err = schema.Compile(tpl, cfg.Schema)
		return err
	}); err != nil {
		return []types.Envelope{p.finish(base, shared, nil)}
	}

	directory := resolve.Directory(resolve.NewTemplateDirectory(tpl))
	if p.Directory != nil {
		directory = resolve.Layered{Primary: directory, Secondary: p.Directory}
	}

	var markdown string
	if err := p.step(shared, stepConversion, func() error {
		raw, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		conv := p.Converter
		if conv == nil {
			if conv, err = convert.ForFile(inputPath); err != nil {
				return err
			}
		}
		markdown, err = conv.Convert(ctx, raw, filepath.Base(inputPath))
		return err
	}); err != nil {
		return []types.Envelope{p.finish(base, shared, nil)}
	}

	var classification classify.Result
	p.step(shared, stepClassification, func() error {
		// Classification fails open to single_item; this step cannot
		// abort the run.
		classification = classify.Classify(ctx, p.Client, markdown, compiled.Tree.Name, cfg.Classifier)
		return nil
	})
	p.logger().Info("document classified",
		zap.String("type", classification.DocumentType),
		zap.String("reasoning", classification.Reasoning))

	chunks := []types.Chunk{{ItemContent: markdown}}
	chunked := false
	if classification.DocumentType == types.MultipleItems {
		p.step(shared, stepSplitting, func() error {
			if split := classify.Split(ctx, p.Client, markdown, compiled.Tree.Name); len(split) > 0 {
				chunks = split
				chunked = true
			} else {
				shared.warnings = append(shared.warnings,
					"Document splitting returned no items; processing the full document as a single item")
			}
			return nil
		})
	}

	envelopes := make([]types.Envelope, 0, len(chunks))
	for _, chunk := range chunks {
		envelopes = append(envelopes, p.processChunk(ctx, chunk, chunked, compiled, directory, base, shared, cfg))
	}
	return envelopes
}

// processChunk runs extraction, resolution, and flattening for one chunk
// on a cloned state. A failure here produces a Failure envelope for this
// chunk only; siblings keep processing.
func (p *Pipeline) processChunk(ctx context.Context, chunk types.Chunk, chunked bool, compiled *schema.Compiled, directory resolve.Directory, base types.Summary, shared *runState, cfg types.PipelineConfig) types.Envelope {
	st := shared.clone()
	summary := base
	var suffix string
	if chunked {
		summary.ItemTitle = chunk.ItemTitle
		if chunk.ItemTitle != "" {
			suffix = fmt.Sprintf(" for '%s'", chunk.ItemTitle)
		}
	}

	var doc map[string]any
	if err := p.step(st, stepExtraction+suffix, func() error {
		var err error
		doc, err = extract.New(p.Client, cfg.AI.MaxRetries).Extract(ctx, chunk.ItemContent, compiled)
		return err
	}); err != nil {
		return p.finish(summary, st, nil)
	}

	// Resolution shortfalls are never fatal: a failed batch call leaves
	// the lookup map empty and the flattener reports unresolved values
	// one by one.
	lookups := types.LookupMap{}
	p.step(st, stepResolution+suffix, func() error {
		items, err := flatten.CollectEntities(compiled.Tree, doc, directory)
		if err != nil {
			st.warnings = append(st.warnings, fmt.Sprintf("Entity resolution skipped: %v", err))
			return nil
		}
		entityTypes := make([]string, 0, len(items))
		for et := range items {
			entityTypes = append(entityTypes, et)
		}
		vocab, err := resolve.Vocabularies(directory, entityTypes)
		if err != nil {
			st.warnings = append(st.warnings, fmt.Sprintf("Entity resolution skipped: %v", err))
			return nil
		}
		if lookups, err = resolve.NewResolver(p.Client).ResolveBatch(ctx, items, vocab); err != nil {
			st.warnings = append(st.warnings, fmt.Sprintf("Entity resolution call failed: %v", err))
		}
		return nil
	})

	var result *flatten.Result
	if err := p.step(st, stepTransformation+suffix, func() error {
		var err error
		result, err = flatten.New(directory, cfg.Resolver).Flatten(compiled.Tree, doc, lookups, compiled.EntityMap)
		return err
	}); err != nil {
		return p.finish(summary, st, nil)
	}
	st.warnings = append(st.warnings, result.Warnings...)

	return p.finish(summary, st, result.Records)
}

// finish assembles the envelope for one chunk or for a failed run.
func (p *Pipeline) finish(summary types.Summary, st *runState, records []types.Record) types.Envelope {
	switch {
	case len(st.errors) > 0:
		summary.OverallStatus = types.StatusFailure
	case len(st.warnings) > 0:
		summary.OverallStatus = types.StatusWithWarnings
	default:
		summary.OverallStatus = types.StatusSuccess
	}
	summary.ProcessingLog = st.log
	summary.ErrorsEncountered = st.errors
	summary.WarningsEncountered = st.warnings
	if records == nil {
		records = []types.Record{}
	}
	summary.HumanReadableSummary = humanSummary(summary, records)
	return types.Envelope{Summary: summary, DmazeData: records}
}
