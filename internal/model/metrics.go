package model

// DeduplicationMetrics summarizes one dedup pass. Invariant:
// DeduplicatedCount + DuplicatesRemoved == OriginalCount.
type DeduplicationMetrics struct {
	OriginalCount     int     `json:"original_count"`
	DeduplicatedCount int     `json:"deduplicated_count"`
	DuplicatesRemoved int     `json:"duplicates_removed"`
	MergeDecisions    int     `json:"merge_decisions"`
	DeduplicationRate float64 `json:"deduplication_rate"`
}

// PerformanceMetrics reports run timing and source health.
type PerformanceMetrics struct {
	TotalTimeMS   int64            `json:"total_time_ms"`
	SuccessRate   float64          `json:"success_rate"`
	PerSourceTime map[string]int64 `json:"per_source_time"`
}

// SourceErrorEntry surfaces one failed source in the payload error list.
type SourceErrorEntry struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// SearchResult is the full JSON-serializable payload handed to the
// presentation and storage collaborators.
type SearchResult struct {
	RunID                string                   `json:"run_id"`
	Candidates           []CanonicalProfile       `json:"candidates"`
	Results              map[string]SourceOutcome `json:"results"`
	DeduplicationMetrics DeduplicationMetrics     `json:"deduplication_metrics"`
	PerformanceMetrics   PerformanceMetrics       `json:"performance_metrics"`
	Errors               []SourceErrorEntry       `json:"errors"`
	Degraded             bool                     `json:"degraded,omitempty"`
}
