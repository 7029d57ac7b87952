// Package store implements the data access layer of the fake product.
//
// State lives in DuckDB (in memory for hermetic runs, or a file when the fake server is
// started with a database path). Queries are built with squirrel where they are composed
// from options and kept as constants where they are fixed.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│  OrganizationStore  EnvironmentStore  UserStore                 │
//	│  ProductStore       RepositoryStore                             │
//	│  ContentViewStore   VersionStore      TaskStore                 │
//	│  HostStore          JobTemplateStore  JobInvocationStore        │
//	├─────────────────────────────────────────────────────────────────┤
//	│            QueryInterceptor (debug logging of SQL)              │
//	├─────────────────────────────────────────────────────────────────┤
//	│                  *sql.DB  or  *sql.Tx (WithTx)                  │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Created by migrations (internal/store/migrations/sql/):
//
//	┌───────────────────────────────────┬──────────────────────────────────────┐
//	│  Table                            │  Purpose                             │
//	├───────────────────────────────────┼──────────────────────────────────────┤
//	│  organizations                    │  tenants                             │
//	│  lifecycle_environments           │  promotion path, one Library per org │
//	│  users                            │  API and UI accounts                 │
//	│  products, repositories           │  yum and puppet content              │
//	│  puppet_modules                   │  modules found by a puppet sync      │
//	│  content_views                    │  views and their version counter     │
//	│  content_view_repositories        │  repository membership (ordered)     │
//	│  content_view_components          │  composite membership (ordered)      │
//	│  content_view_puppet_modules      │  puppet modules added to a view      │
//	│  content_view_versions            │  published snapshots                 │
//	│  content_view_version_environments│  promotions                          │
//	│  content_view_version_contents    │  what a snapshot was published with  │
//	│  tasks                            │  asynchronous actions                │
//	│  hosts, host_parameters           │  remote execution targets            │
//	│  job_templates, template_inputs   │  remote execution templates          │
//	│  job_invocations (+inputs/targets)│  executions and per-host results     │
//	│  schema_migrations                │  migration version tracking          │
//	└───────────────────────────────────┴──────────────────────────────────────┘
//
// There are no foreign keys or unique constraints. Referential and uniqueness rules are
// enforced by internal/services inside a transaction.
//
// # Transactions
//
// WithTx serializes writers on a mutex and runs fn against a Store bound to a *sql.Tx.
// Code inside fn must use the Store it is given, never the outer one. Nested WithTx
// calls reuse the running transaction:
//
//	err := s.WithTx(ctx, func(tx *store.Store) error {
//	    id, err := tx.Organization().Create(ctx, org)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = tx.Environment().Create(ctx, library(id))
//	    return err
//	})
//
// # List Options
//
// List and Count take ListOption functions that modify a squirrel.SelectBuilder:
//
//	views, err := s.ContentView().List(ctx,
//	    store.ByOrganization(orgID),
//	    store.ByNameLike("web"),
//	    store.WithSort([]store.SortParam{{Field: "name"}}),
//	    store.WithLimit(20),
//	    store.WithOffset(40),
//	)
//
// ByNameLike escapes LIKE wildcards so search terms match literally. WithSort ignores
// unknown fields and always appends id as the tie-breaker.
//
// # Memberships
//
// Lists are stored in join tables rather than LIST columns. Loading an entity loads its
// memberships with one query per table after the main row set is read, so no two result
// sets are open at the same time on a transaction.
package store
