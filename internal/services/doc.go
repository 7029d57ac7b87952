// Package services implements the business rules of the fake content-management product.
//
// Services sit between the HTTP handlers and the store. They validate input, enforce
// the membership rules of content views and run the product's asynchronous actions on
// the shared scheduler.
//
// # Service Dependency Graph
//
//	Handlers (API + UI)
//	    │
//	    ▼
//	Services Layer
//	    ├── OrganizationService ──► Store
//	    ├── UserService ──────────► Store
//	    ├── ContentService ───────► Store, TaskService
//	    ├── ContentViewService ───► Store, TaskService
//	    ├── TaskService ──────────► Store, Scheduler, Clock
//	    ├── HostService ──────────► Store
//	    ├── JobTemplateService ───► Store
//	    └── JobInvocationService ─► Store, Scheduler, Clock
//
// # Validation
//
// Input errors are collected in a field.ErrorList and returned as one ValidationError
// whose messages are the rendered field errors:
//
//	name: Required value: can't be blank
//	name: Invalid value: "Web": has already been taken
//	label: Invalid value: "other": field is immutable
//
// Membership errors have their own types so a client can tell them apart:
//   - DuplicateReferenceError: an id given twice, a module added twice, a version promoted
//     to an environment it is already in
//   - CompositionRuleViolationError: repositories on a composite view, components on a
//     non-composite view, puppet repositories in a repository set, composite versions
//     used as components
//
// # Tasks
//
// Publish, promote and repository sync return a planned Task immediately. The mutation
// runs later on the scheduler:
//
//	┌─────────┐  latency   ┌─────────┐  action   ┌─────────┐
//	│ planned │───────────►│ running │──────────►│ stopped │ result: success | error
//	└─────────┘            └─────────┘           └─────────┘
//
// The action runs inside one store transaction. Checks that can fail fast (unknown
// version, duplicate promotion) are done before the task is created and repeated by the
// action, since the state may change in between.
//
// # Job invocations
//
// An invocation renders its template once per targeted host when it is created, so
// missing inputs and template errors are reported synchronously. Execution waits for
// start_at (if any), then runs each host's script through a small command interpreter.
// A host succeeds when its script exits 0:
//
//	queued ──► running ──► succeeded | failed
//
// Usage:
//
//	tasks := services.NewTaskService(st, sched, clock.RealClock{}, 100*time.Millisecond)
//	views := services.NewContentViewService(st, tasks)
//	cv, err := views.Create(ctx, orgID, services.ContentViewParams{Name: "web"})
//	task, err := views.Publish(ctx, cv.ID, "")
//
// # Thread Safety
//
// Services are stateless and hold only their dependencies. Read-check-write sequences
// run inside Store.WithTx, which serializes writers.
package services
