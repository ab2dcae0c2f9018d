// Package download provides the per-track download orchestration:
// negotiate an encoding, fetch the stream, place it atomically, tag it.
//
// # Orchestrator
//
// The Orchestrator walks the resolved tracks strictly in order:
//
//  1. Negotiate the configured quality tier (exact match, no downgrade)
//  2. Skip tracks whose final file already exists
//  3. Stream the audio into a staging file and rename it into place
//  4. Tag the file and write the optional folder cover and lyrics
//
// # Basic Usage
//
//	orch := download.NewOrchestrator(settings, client, negotiator, assembler,
//	    func(event download.ProgressEvent) {
//	        fmt.Println(event.Message)
//	    })
//
//	report, err := orch.Run(ctx, tracks)
//	if err != nil {
//	    // run aborted: rejected credential or cancelled context
//	}
//	success, failed, skipped := report.Counts()
//
// # Failure Isolation
//
// A failed track is recorded in the run report and the loop moves on.
// Only two things abort a run outright: the service rejecting the
// credential, and context cancellation.
//
// # Pacing and Retries
//
// Consecutive downloads are separated by the configured sleep interval.
// Transient faults are retried with exponential backoff
// (retry_cooldown * retry_exponent^tries); rate limiting waits the flat
// rate_limit_cooldown instead.
package download
