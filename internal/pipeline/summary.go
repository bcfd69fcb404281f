// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Dmazeio/document-import-poc/pkg/types"
)

// humanSummary renders the one-paragraph account of a chunk's outcome.
func humanSummary(s types.Summary, records []types.Record) string {
	if s.OverallStatus == types.StatusFailure {
		return fmt.Sprintf("Processing of '%s' failed: %s",
			s.InputFile, strings.Join(s.ErrorsEncountered, "; "))
	}

	subject := fmt.Sprintf("'%s'", s.InputFile)
	if s.ItemTitle != "" {
		subject = fmt.Sprintf("item '%s' from '%s'", s.ItemTitle, s.InputFile)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully processed %s using template '%s'. Created %d record%s",
		subject, s.TemplateUsed, len(records), plural(len(records)))
	if breakdown := recordBreakdown(records); breakdown != "" {
		fmt.Fprintf(&b, " (%s)", breakdown)
	}
	b.WriteString(".")
	if n := len(s.WarningsEncountered); n > 0 {
		fmt.Fprintf(&b, " %d warning%s recorded.", n, plural(n))
	}
	return b.String()
}

func recordBreakdown(records []types.Record) string {
	counts := map[string]int{}
	for _, rec := range records {
		counts[rec.ObjectName()]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%d %s", counts[name], name))
	}
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// WriteEnvelopes persists one JSON file per envelope under dir and
// returns the written paths. A single envelope gets
// <base>_dmaze_import.json; multiple envelopes are numbered from 1.
func WriteEnvelopes(dir, inputPath string, envelopes []types.Envelope) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	name := filepath.Base(inputPath)
	base := strings.TrimSuffix(name, filepath.Ext(name))

	paths := make([]string, 0, len(envelopes))
	for i, env := range envelopes {
		filename := base + "_dmaze_import.json"
		if len(envelopes) > 1 {
			filename = fmt.Sprintf("%s_dmaze_import_%d.json", base, i+1)
		}
		path := filepath.Join(dir, filename)

		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("encoding envelope: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
