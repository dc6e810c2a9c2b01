// ABOUTME: Fixed-shape reports returned by the pipeline stages
// ABOUTME: Every stage returns the same struct type on all paths, including zero-work runs
package models

// IngestReport accounts for one ingestion pass across all sources.
type IngestReport struct {
	Discovered  int      `json:"discovered"`
	Inserted    int      `json:"inserted"`
	Updated     int      `json:"updated"`
	Unchanged   int      `json:"unchanged"`
	Skipped     int      `json:"skipped"` // low quality + parse failures
	ParseErrors int      `json:"parse_errors"`
	NewIDs      []string `json:"new_ids,omitempty"`
	UpdatedIDs  []string `json:"updated_ids,omitempty"`
}

// EnrichReport accounts for one summarization pass.
type EnrichReport struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// PromoteReport accounts for one consolidation pass.
type PromoteReport struct {
	Projects  int `json:"projects"`
	Entries   int `json:"entries"` // candidates processed
	Confirmed int `json:"confirmed"`
	New       int `json:"new"`
}

// PipelineReport is the aggregate of a full gated run.
type PipelineReport struct {
	Ingest   IngestReport  `json:"ingest"`
	Enrich   EnrichReport  `json:"enrich"`
	Promote  PromoteReport `json:"promote"`
	Daily    bool          `json:"daily"`
	Duration float64       `json:"duration_seconds"`
}

// Decision is the gate's verdict on whether a pipeline run may proceed.
type Decision struct {
	MayRun bool   `json:"may_run"`
	Daily  bool   `json:"daily"`
	Reason string `json:"reason"`
}
