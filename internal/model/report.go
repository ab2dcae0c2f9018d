package model

// Outcome is the terminal state of one track in the run report.
type Outcome int

const (
	// OutcomeSuccess means the track was downloaded and assembled.
	OutcomeSuccess Outcome = iota

	// OutcomeFailed means the track was attempted and failed.
	OutcomeFailed

	// OutcomeSkipped means the track was not attempted (unavailable,
	// already on disk, or its encoding tier is not offered).
	OutcomeSkipped
)

// String returns the outcome label used in the summary.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// DownloadResult records the terminal state of one resolved track.
type DownloadResult struct {
	Track   *TrackDescriptor
	Outcome Outcome

	// Path is the final file location for OutcomeSuccess.
	Path string

	// Reason is the captured failure or skip reason for the other
	// outcomes. Err carries the underlying error when one exists.
	Reason string
	Err    error
}

// FailedReference records a reference that could not be resolved at all.
type FailedReference struct {
	Reference Reference
	Reason    string
}

// RunReport accumulates per-track results and per-reference failures.
// It is the only state that survives the pipeline and is the basis of
// the user-visible summary: every input reference and every resolved
// track appears exactly once.
type RunReport struct {
	Results          []DownloadResult
	FailedReferences []FailedReference
}

// Add appends one track result.
func (r *RunReport) Add(res DownloadResult) {
	r.Results = append(r.Results, res)
}

// AddFailedReference records a reference that failed to resolve.
func (r *RunReport) AddFailedReference(ref Reference, reason string) {
	r.FailedReferences = append(r.FailedReferences, FailedReference{Reference: ref, Reason: reason})
}

// Counts returns the number of results per outcome.
func (r *RunReport) Counts() (success, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeSuccess:
			success++
		case OutcomeFailed:
			failed++
		case OutcomeSkipped:
			skipped++
		}
	}
	return success, failed, skipped
}

// Failures returns the failed results, preserving processing order.
func (r *RunReport) Failures() []DownloadResult {
	var failures []DownloadResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failures = append(failures, res)
		}
	}
	return failures
}
