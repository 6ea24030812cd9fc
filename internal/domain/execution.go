package domain

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Command    string
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
}

// Succeeded reports a zero exit status.
func (r ExecutionResult) Succeeded() bool {
	return r.ExitCode == 0
}
