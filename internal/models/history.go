package models

import "time"

// HistoryEntry is an immutable snapshot of a scored application
type HistoryEntry struct {
	ID          string      `json:"id"`
	Application Application `json:"application"`
	Decision    Decision    `json:"decision"`
	CreatedAt   time.Time   `json:"created_at"`
}

// HistorySummary represents approved vs denied counts for a session
type HistorySummary struct {
	ApprovedCount int `json:"approved_count"`
	DeniedCount   int `json:"denied_count"`
}

// Total returns the number of decisions covered by the summary
func (s HistorySummary) Total() int {
	return s.ApprovedCount + s.DeniedCount
}

// ApprovalRate returns the approved share in [0,1], zero when empty
func (s HistorySummary) ApprovalRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.ApprovedCount) / float64(s.Total())
}
