package commands

// Error messages
const (
	ErrHistoryStoreUnavailable  = "history is disabled (history.enabled: false)"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
	MsgNoHistoryRecorded  = "No history recorded yet."
	MsgNoSessions         = "No sessions saved yet."
)

// TimestampFormat is used in tabular listings.
const TimestampFormat = "2006-01-02 15:04:05"
