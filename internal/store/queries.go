package store

// Organization queries
const (
	queryInsertOrganization = `
		INSERT INTO organizations (name, label, description)
		VALUES (?, ?, ?)
		RETURNING id`

	queryDeleteOrganization = `DELETE FROM organizations WHERE id = ?`
)

// Lifecycle environment queries
const (
	queryInsertEnvironment = `
		INSERT INTO lifecycle_environments (organization_id, name, label, description, prior_id, library)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`

	queryDeleteEnvironmentsByOrganization = `DELETE FROM lifecycle_environments WHERE organization_id = ?`
)

// User queries
const (
	queryInsertUser = `
		INSERT INTO users (login, password, firstname, lastname, mail, admin, default_organization_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	queryDeleteUser = `DELETE FROM users WHERE id = ?`
)

// Product and repository queries
const (
	queryInsertProduct = `
		INSERT INTO products (organization_id, name, label, description)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	queryInsertRepository = `
		INSERT INTO repositories (product_id, organization_id, name, label, content_type, url)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`

	queryUpdateRepositorySync = `
		UPDATE repositories SET package_count = ?, last_sync = ?
		WHERE id = ?`

	queryInsertPuppetModule = `
		INSERT INTO puppet_modules (repository_id, name, author, version)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	queryDeletePuppetModulesByRepository = `DELETE FROM puppet_modules WHERE repository_id = ?`
)

// Content view queries
const (
	queryInsertContentView = `
		INSERT INTO content_views (organization_id, name, label, description, composite)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`

	queryUpdateContentView = `
		UPDATE content_views SET name = ?, description = ?, updated_at = now()
		WHERE id = ?`

	queryNextVersion = `SELECT next_version FROM content_views WHERE id = ?`

	queryBumpNextVersion = `UPDATE content_views SET next_version = ? WHERE id = ?`

	queryDeleteContentView = `DELETE FROM content_views WHERE id = ?`

	queryContentViewRepositories = `
		SELECT repository_id FROM content_view_repositories
		WHERE content_view_id = ? ORDER BY idx`

	queryDeleteContentViewRepositories = `DELETE FROM content_view_repositories WHERE content_view_id = ?`

	queryInsertContentViewRepository = `
		INSERT INTO content_view_repositories (content_view_id, repository_id, idx)
		VALUES (?, ?, ?)`

	queryContentViewComponents = `
		SELECT version_id FROM content_view_components
		WHERE content_view_id = ? ORDER BY idx`

	queryDeleteContentViewComponents = `DELETE FROM content_view_components WHERE content_view_id = ?`

	queryInsertContentViewComponent = `
		INSERT INTO content_view_components (content_view_id, version_id, idx)
		VALUES (?, ?, ?)`

	queryCompositesUsingVersion = `
		SELECT DISTINCT content_view_id FROM content_view_components
		WHERE version_id = ? ORDER BY content_view_id`

	queryContentViewPuppetModules = `
		SELECT id, content_view_id, puppet_module_id, name, author
		FROM content_view_puppet_modules
		WHERE content_view_id = ? ORDER BY id`

	queryInsertContentViewPuppetModule = `
		INSERT INTO content_view_puppet_modules (content_view_id, puppet_module_id, name, author)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	queryDeleteContentViewPuppetModules = `DELETE FROM content_view_puppet_modules WHERE content_view_id = ?`
)

// Content view version queries
const (
	queryInsertVersion = `
		INSERT INTO content_view_versions (content_view_id, major, minor, description, package_count)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`

	queryVersionEnvironments = `
		SELECT environment_id FROM content_view_version_environments
		WHERE version_id = ? ORDER BY environment_id`

	queryInsertVersionEnvironment = `
		INSERT INTO content_view_version_environments (version_id, environment_id)
		VALUES (?, ?)`

	queryDeleteVersionEnvironment = `
		DELETE FROM content_view_version_environments
		WHERE version_id = ? AND environment_id = ?`

	queryVersionContents = `
		SELECT ref_id FROM content_view_version_contents
		WHERE version_id = ? AND kind = ? ORDER BY ref_id`

	queryInsertVersionContent = `
		INSERT INTO content_view_version_contents (version_id, kind, ref_id)
		VALUES (?, ?, ?)`

	queryDeleteVersion             = `DELETE FROM content_view_versions WHERE id = ?`
	queryDeleteVersionEnvironments = `DELETE FROM content_view_version_environments WHERE version_id = ?`
	queryDeleteVersionContents     = `DELETE FROM content_view_version_contents WHERE version_id = ?`
)

// Task queries
const (
	queryInsertTask = `
		INSERT INTO tasks (id, label, action, resource_type, resource_id, state, result, progress, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryUpdateTask = `
		UPDATE tasks SET state = ?, result = ?, progress = ?, errors = ?, started_at = ?, ended_at = ?
		WHERE id = ?`
)

// Host queries
const (
	queryInsertHost = `
		INSERT INTO hosts (name, organization_id, ip, content_view_id, lifecycle_environment_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`

	queryHostParameters = `
		SELECT name, value FROM host_parameters WHERE host_id = ? ORDER BY name`

	queryDeleteHostParameter = `DELETE FROM host_parameters WHERE host_id = ? AND name = ?`

	queryInsertHostParameter = `
		INSERT INTO host_parameters (host_id, name, value)
		VALUES (?, ?, ?)`

	queryDeleteHost           = `DELETE FROM hosts WHERE id = ?`
	queryDeleteHostParameters = `DELETE FROM host_parameters WHERE host_id = ?`
)

// Job template queries
const (
	queryInsertJobTemplate = `
		INSERT INTO job_templates (name, job_category, provider_type, description, template, snippet, locked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	queryUpdateJobTemplate = `
		UPDATE job_templates
		SET name = ?, job_category = ?, provider_type = ?, description = ?, template = ?, updated_at = now()
		WHERE id = ?`

	queryTemplateInputs = `
		SELECT id, template_id, name, required, description, input_type
		FROM template_inputs WHERE template_id = ? ORDER BY id`

	queryInsertTemplateInput = `
		INSERT INTO template_inputs (template_id, name, required, description, input_type)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`

	queryDeleteJobTemplate   = `DELETE FROM job_templates WHERE id = ?`
	queryDeleteTemplateInput = `DELETE FROM template_inputs WHERE template_id = ?`
)

// Job invocation queries
const (
	queryInsertJobInvocation = `
		INSERT INTO job_invocations (template_id, job_category, description, start_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	queryJobInvocationInputs = `
		SELECT name, value FROM job_invocation_inputs WHERE invocation_id = ?`

	queryInsertJobInvocationInput = `
		INSERT INTO job_invocation_inputs (invocation_id, name, value)
		VALUES (?, ?, ?)`

	queryJobInvocationTargets = `
		SELECT invocation_id, host_id, host_name, status, exit_status, output, started_at, ended_at
		FROM job_invocation_targets WHERE invocation_id = ? ORDER BY host_id`

	queryInsertJobInvocationTarget = `
		INSERT INTO job_invocation_targets (invocation_id, host_id, host_name, status)
		VALUES (?, ?, ?, ?)`

	queryUpdateJobInvocationTarget = `
		UPDATE job_invocation_targets
		SET status = ?, exit_status = ?, output = ?, started_at = ?, ended_at = ?
		WHERE invocation_id = ? AND host_id = ?`
)
