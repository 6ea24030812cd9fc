package domain

import "time"

// HistoryRecord is the index entry kept for every logged action.
type HistoryRecord struct {
	Timestamp time.Time  `json:"timestamp"`
	SessionID string     `json:"session_id"`
	Kind      ActionKind `json:"kind"`
	Target    string     `json:"target"`
	Status    string     `json:"status"`
	Summary   string     `json:"summary"`
}

// NewHistoryRecord projects an action record onto its index entry.
func NewHistoryRecord(sessionID string, action ActionRecord) HistoryRecord {
	rec := HistoryRecord{
		Timestamp: action.At,
		SessionID: sessionID,
		Kind:      action.Kind(),
		Status:    action.Status,
	}
	if action.Details != nil {
		rec.Target = action.Details.Target()
		for _, f := range action.Details.Fields() {
			if f.Style == FieldInline {
				continue
			}
			rec.Summary = Truncate(f.Value, 200)
			break
		}
	}
	return rec
}
