// Package satellite is a typed client of the Foreman, Katello and foreman-tasks REST APIs
// with the domain actions the e2e suite is written against.
//
// Calls are plain request/response. Asynchronous operations (sync, publish, promote) return
// a *v1.Task; job invocations return a *v1.JobInvocation. Both are observed with pkg/poll:
//
//	task, err := c.PublishContentView(ctx, cv.ID, "")
//	...
//	task, err = c.WaitTask(ctx, task.ID)
//	switch {
//	case errors.IsTimedOutError(err):     // gave up observing, remote state unknown
//	case errors.IsOperationFailedError(err): // task stopped with error or warning
//	}
//
// PublishAndWait, PromoteAndWait, SyncAndWait and RunJobAndWait combine both steps.
//
// # Error classification
//
//	┌───────────────┬──────────────────────────────────────────────────────────────┐
//	│ Status        │ Error                                                        │
//	├───────────────┼──────────────────────────────────────────────────────────────┤
//	│ 401, 403      │ UnauthorizedError                                            │
//	│ 404           │ ResourceNotFoundError                                        │
//	│ 409           │ DuplicateReferenceError                                      │
//	│ 422           │ CompositionRuleViolationError if the message names the       │
//	│               │ composite or puppet rule, DuplicateReferenceError if it      │
//	│               │ names a duplicate or an existing promotion, otherwise        │
//	│               │ ValidationError                                              │
//	│ other ≥ 400   │ *StatusError                                                 │
//	└───────────────┴──────────────────────────────────────────────────────────────┘
//
// Every Wait call reports an Observation to the registered observers, which is how the
// suite report learns about poll outcomes and host output.
package satellite
