// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Well-known record keys. All other keys are template-declared field names.
const (
	KeyID         = "id"
	KeyObjectName = "objectname"
	KeyParentID   = "parentid"
	KeyParentType = "parenttype"
)

// EntityRef is the value of a resolved entity or relationship field:
// the referenced type plus zero or more canonical ids.
type EntityRef struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// Record is one flat Dmaze import record. Field values are either plain
// scalars (string or nil) or EntityRef values; the key set is dictated by
// the template, so the record is a dynamic map rather than a fixed struct.
type Record map[string]any

// ID returns the record's generated identifier.
func (r Record) ID() string {
	s, _ := r[KeyID].(string)
	return s
}

// ObjectName returns the record's object type name.
func (r Record) ObjectName() string {
	s, _ := r[KeyObjectName].(string)
	return s
}

// Ref returns the EntityRef stored under field, if any.
func (r Record) Ref(field string) (EntityRef, bool) {
	ref, ok := r[field].(EntityRef)
	return ref, ok
}

// Overall status values for one result envelope.
const (
	StatusSuccess      = "Success"
	StatusWithWarnings = "SuccessWithWarnings"
	StatusFailure      = "Failure"
)

// Summary is the metadata half of a result envelope. The JSON key names
// are a stable output contract consumed downstream; do not rename them.
type Summary struct {
	InputFile            string            `json:"inputFile"`
	TemplateUsed         string            `json:"templateUsed"`
	OverallStatus        string            `json:"overallStatus"`
	ItemTitle            string            `json:"itemTitle,omitempty"`
	ProcessingTimestamp  string            `json:"processingTimestamp"`
	ProcessingLog        map[string]string `json:"processingLog"`
	ErrorsEncountered    []string          `json:"errorsEncountered"`
	WarningsEncountered  []string          `json:"warningsEncountered"`
	HumanReadableSummary string            `json:"humanReadableSummary"`
}

// Envelope is the terminal output for one document chunk.
type Envelope struct {
	Summary   Summary  `json:"summary"`
	DmazeData []Record `json:"dmaze_data"`
}
