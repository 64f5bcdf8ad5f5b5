package model

// ParseMethod identifies which extraction path produced the transactions.
type ParseMethod string

// Parse method constants.
const (
	MethodTemplate    ParseMethod = "template"
	MethodGeneric     ParseMethod = "generic-fallback"
	MethodSpreadsheet ParseMethod = "spreadsheet"
	MethodOFX         ParseMethod = "ofx"
)

// Adjustment records one reconciliation change so corrected data stays
// traceable and reviewable.
type Adjustment struct {
	Kind        string // "dropped", "corrected", "synthetic"
	Description string
	Amount      float64
}

// ParseMetadata is the companion record for one processed document,
// consumed by the review UI and workbook writer alongside the entries.
type ParseMetadata struct {
	SourceFile          string
	Bank                string
	Method              ParseMethod
	OCRUsed             bool
	PageCount           int
	ExpectedDeposits    *float64
	ExpectedWithdrawals *float64
	ParsedDeposits      float64
	ParsedWithdrawals   float64
	Adjustments         []Adjustment
	Warnings            []string
	Err                 string // per-file failure, recorded without aborting the batch
}

// DuplicateSource says where a flagged duplicate was first seen.
type DuplicateSource string

// Duplicate source constants.
const (
	DuplicateInBatch    DuplicateSource = "current_batch"
	DuplicateInDatabase DuplicateSource = "database"
)

// DuplicateFlag marks one batch transaction as a suspected duplicate.
type DuplicateFlag struct {
	Index  int
	Source DuplicateSource
	Match  string // hash or dedup key that collided
}

// BatchResult is the full output of one processing run.
type BatchResult struct {
	SessionID  string
	Entries    []RoutedEntry
	Files      []ParseMetadata
	Duplicates []DuplicateFlag
	// ModuleCounts tracks how many entries were routed to each module,
	// including the unidentified bucket under ModuleUnknown.
	ModuleCounts map[Module]int
}
