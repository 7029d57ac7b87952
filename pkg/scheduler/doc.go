// Package scheduler runs the fake product's asynchronous work on a fixed pool of workers.
//
// Publishing, promoting and syncing start a task row and hand its body to the
// scheduler. A job invocation hands over the runs of its target hosts the same
// way. The HTTP handler returns the planned task at once, and clients observe
// progress by polling.
//
//	Submit(name, w) ──▶ pending FIFO ──▶ worker 1..N ──▶ Ticket.Done()
//
// Submit returns a Ticket carrying the Outcome. Go is the fire-and-forget form
// used when the work records its own result. It logs failures through zap.
//
// A panicking Work resolves its ticket with an error and frees its worker.
// Close cancels running work and resolves queued tickets with context.Canceled.
// It returns once every worker is idle, so the store can be closed right after.
package scheduler
