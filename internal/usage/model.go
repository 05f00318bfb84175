package usage

import "time"

// Snapshot summarizes a user's consumption for the current billing period.
type Snapshot struct {
	Plan        string    `json:"plan"`
	Limit       int       `json:"limit"`
	Used        int       `json:"used"`
	Remaining   int       `json:"remaining"`
	PeriodStart time.Time `json:"period_start"`
}

// Record is one successfully processed file.
type Record struct {
	ID        string
	UserID    string
	FileName  string
	IPAddress string
	CreatedAt time.Time
}

// PlanLimits holds the per-plan monthly document allowance.
type PlanLimits struct {
	Free int
	Pro  int
}
