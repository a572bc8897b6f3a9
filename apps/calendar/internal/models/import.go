package models

// SkippedComponent is a calendar component that could not be imported.
type SkippedComponent struct {
	UID     string `json:"uid"`
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}

type ImportResult struct {
	Created []Event            `json:"created"`
	Skipped []SkippedComponent `json:"skipped"`
}
