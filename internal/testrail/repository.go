package testrail

import "context"

// ProjectRepository reads projects.
type ProjectRepository interface {
	GetProject(ctx context.Context, projectID int) (Project, error)
}

// SuiteRepository lists and creates suites.
type SuiteRepository interface {
	GetSuites(ctx context.Context, projectID int) ([]Suite, error)
	AddSuite(ctx context.Context, projectID int, suite Suite) (Suite, error)
}

// SectionRepository lists and creates sections.
type SectionRepository interface {
	GetSections(ctx context.Context, projectID, suiteID int) ([]Section, error)
	AddSection(ctx context.Context, projectID int, section Section) (Section, error)
}

// CaseRepository creates and updates cases.
type CaseRepository interface {
	AddCase(ctx context.Context, sectionID int, c Case) (Case, error)
	UpdateCase(ctx context.Context, caseID int, c Case) (Case, error)
}

// PlanRepository reads plans and adds plan entries.
type PlanRepository interface {
	GetPlan(ctx context.Context, planID int) (Plan, error)
	AddPlanEntry(ctx context.Context, planID int, entry PlanEntry) (PlanEntry, error)
}

// TestRepository lists the tests of a run.
type TestRepository interface {
	GetTests(ctx context.Context, runID int) ([]Test, error)
}

// ResultRepository submits results.
type ResultRepository interface {
	AddResults(ctx context.Context, runID int, results []Result) ([]Result, error)
}

// ConfigurationRepository lists configuration groups.
type ConfigurationRepository interface {
	GetConfigs(ctx context.Context, projectID int) ([]ConfigGroup, error)
}

// StatusRepository lists result statuses.
type StatusRepository interface {
	GetStatuses(ctx context.Context) ([]Status, error)
}

// PriorityRepository lists priorities.
type PriorityRepository interface {
	GetPriorities(ctx context.Context) ([]Priority, error)
}

// CaseTypeRepository lists case types.
type CaseTypeRepository interface {
	GetCaseTypes(ctx context.Context) ([]CaseType, error)
}

// TemplateRepository lists the templates of a project.
type TemplateRepository interface {
	GetTemplates(ctx context.Context, projectID int) ([]Template, error)
}

// API is the full set of resources used by featurerail.
type API interface {
	ProjectRepository
	SuiteRepository
	SectionRepository
	CaseRepository
	PlanRepository
	TestRepository
	ResultRepository
	ConfigurationRepository
	StatusRepository
	PriorityRepository
	CaseTypeRepository
	TemplateRepository
}
