package schemas

import "time"

// ReportEnvelope is the top-level wrapper for everything one scan produced:
// the query, the mapped graph, and the generated recommendations.
type ReportEnvelope struct {
	ScanID          string    `json:"scan_id"`
	Query           ScanQuery `json:"query"`
	Timestamp       time.Time `json:"timestamp"`
	Graph           Graph     `json:"graph"`
	Recommendations string    `json:"recommendations,omitempty"`
}
