// Package handlers implements the HTTP layer of the fake Satellite product.
//
// Handlers parse requests, delegate to the services layer and convert models into the
// api/v1 wire types. Two surfaces are served from the same Handler:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	               │                                  │
//	               ▼                                  ▼
//	┌──────────────────────────────┐   ┌──────────────────────────────┐
//	│ REST API (RegisterAPI)       │   │ Web UI (RegisterUI)          │
//	│  basic auth                  │   │  session cookie              │
//	│  JSON bodies                 │   │  html/template pages         │
//	└──────────────────────────────┘   └──────────────────────────────┘
//	               │                                  │
//	               ▼                                  ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│ Organization │ User │ Content │ ContentView │ Task │ Host │ Job │
//	└─────────────────────────────────────────────────────────────────┘
//
// # API Endpoints
//
// Routes follow the Foreman and Katello layout:
//
//	┌──────────────────────────┬──────────────────────────────────────────────┐
//	│ Prefix                   │ Resources                                    │
//	├──────────────────────────┼──────────────────────────────────────────────┤
//	│ /api/v2                  │ status, organizations, users, hosts,         │
//	│                          │ job_templates, job_invocations               │
//	│ /katello/api/v2          │ ping, organizations, environments, products, │
//	│                          │ repositories, puppet_modules, content_views, │
//	│                          │ content_view_versions                        │
//	│ /foreman_tasks/api       │ tasks                                        │
//	└──────────────────────────┴──────────────────────────────────────────────┘
//
// Sync, publish and promote answer 202 Accepted with the task to poll:
//
//	POST /katello/api/v2/content_views/7/publish
//	→ 202 {"id": "5d3c...", "state": "planned", "result": "pending", ...}
//	GET /foreman_tasks/api/tasks/5d3c...
//	→ 200 {"state": "stopped", "result": "success", ...}
//
// Index endpoints accept page, per_page, search and order and answer with the list
// envelope:
//
//	{"total": 3, "subtotal": 1, "page": 1, "per_page": 20, "search": "name = \"x\"", "results": [...]}
//
// # Error Handling
//
// Errors use the Katello body:
//
//	{"displayMessage": "validation failed: name: Required value", "errors": ["name: Required value"]}
//
// HTTP Status Code Mapping:
//
//	┌─────────────────────────────────┬────────┐
//	│ Error Type                      │ Status │
//	├─────────────────────────────────┼────────┤
//	│ malformed JSON body             │ 400    │
//	│ UnauthorizedError               │ 401    │
//	│ ResourceNotFoundError           │ 404    │
//	│ ValidationError                 │ 422    │
//	│ DuplicateReferenceError         │ 422    │
//	│ CompositionRuleViolationError   │ 422    │
//	│ anything else                   │ 500    │
//	└─────────────────────────────────┴────────┘
//
// Unparseable path ids are reported as 404.
//
// # Web UI
//
// Pages are embedded templates rendered inside a shared layout. Errors are shown in the
// #error-alert element of the page that caused them; successful forms redirect with a
// notice. The job invocation page exposes the aggregate status in #job-status and the
// output of each host in #output-<host id>.
package handlers
