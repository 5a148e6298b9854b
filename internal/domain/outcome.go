package domain

// OutputArtifact is one file exported by a job.
type OutputArtifact struct {
	Format ExportFormat `json:"format"`
	Filter string       `json:"filter"`
	Path   string       `json:"path"`
}

// JobOutcome is the terminal result of one fill job.
type JobOutcome struct {
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	Artifacts []OutputArtifact `json:"artifacts"`
}

// Status maps the outcome onto the request lifecycle.
func (o JobOutcome) Status() ProcessingStatus {
	if o.Success {
		return StatusSuccessful
	}
	return StatusFailed
}

// FailedOutcome builds a failed outcome carrying err's message.
func FailedOutcome(err error) JobOutcome {
	return JobOutcome{Success: false, Error: err.Error()}
}
